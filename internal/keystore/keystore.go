// Package keystore persists WireGuard private keys as base64 files with
// owner-only permissions.
package keystore

import (
	"context"
	"fmt"
	"os"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/errors"
	"github.com/chiquitav2/wireguard-conf/pkg/logger"
)

// keyFileMode is what wg(8) expects of a private key file.
const keyFileMode = 0600

// Store loads, creates and removes private key files.
type Store struct {
	logger *logger.Logger
}

// New creates a key store.
func New(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}

	return &Store{
		logger: log.WithComponent("keystore"),
	}
}

// LoadOrCreate loads the key at path, or generates and saves a new one if
// the file does not exist. created reports which happened.
func (s *Store) LoadOrCreate(ctx context.Context, path string) (key crypto.PrivateKey, created bool, err error) {
	path = ExpandHomeDir(path)

	if _, err := os.Stat(path); err == nil {
		key, err := s.Load(ctx, path)
		return key, false, err
	} else if !os.IsNotExist(err) {
		return crypto.PrivateKey{}, false, fileError("failed to check key file", err)
	}

	key = crypto.GeneratePrivateKey()
	if err := s.Save(ctx, key, path); err != nil {
		key.Zeroize()
		return crypto.PrivateKey{}, false, err
	}

	s.logger.KeyOperation(ctx, "created", path, key.PublicKey().String())
	return key, true, nil
}

// Load reads and parses the private key at path.
func (s *Store) Load(ctx context.Context, path string) (crypto.PrivateKey, error) {
	path = ExpandHomeDir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return crypto.PrivateKey{}, fileError("failed to read private key", err)
	}
	defer clear(data)

	key, err := crypto.ParsePrivateKey(string(data))
	if err != nil {
		return crypto.PrivateKey{}, fmt.Errorf("%s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil && info.Mode().Perm()&0077 != 0 {
		s.logger.WithContext(ctx).Warn("private key file is accessible by other users",
			"path", path, "mode", info.Mode().Perm().String())
	}

	s.logger.KeyOperation(ctx, "loaded", path, key.PublicKey().String())
	return key, nil
}

// Save writes key to path atomically with 0600 permissions, replacing any
// existing file.
func (s *Store) Save(ctx context.Context, key crypto.PrivateKey, path string) error {
	path = ExpandHomeDir(path)

	data := []byte(key.String() + "\n")
	defer clear(data)

	if err := WriteFileAtomic(path, data, keyFileMode); err != nil {
		return fileError("failed to save private key", err)
	}

	s.logger.KeyOperation(ctx, "saved", path, key.PublicKey().String())
	return nil
}

// Delete removes the key file at path.
func (s *Store) Delete(ctx context.Context, path string) error {
	path = ExpandHomeDir(path)

	if err := os.Remove(path); err != nil {
		return fileError("failed to delete key file", err)
	}

	s.logger.KeyOperation(ctx, "deleted", path, "")
	return nil
}

func fileError(msg string, err error) error {
	return errors.WrapWithDomain(err, errors.DomainSystem, errors.ErrCodeFileOperation, msg, false)
}
