package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/curve25519"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// KeySize is the length in bytes of every WireGuard key.
const KeySize = 32

// EncodedKeySize is the length of a base64 encoded key.
const EncodedKeySize = 44

var validBase64 = regexp.MustCompile(`^[A-Za-z0-9+/]+=*$`)

// PrivateKey is a Curve25519 scalar used for the Noise handshake.
type PrivateKey struct {
	key [KeySize]byte
}

// PublicKey is the Curve25519 point matching a PrivateKey, or a remote
// peer's identity received verbatim.
type PublicKey struct {
	key [KeySize]byte
}

// PresharedKey is an optional symmetric secret mixed into the handshake.
type PresharedKey struct {
	key [KeySize]byte
}

// GeneratePrivateKey generates a new private key from the system CSPRNG.
func GeneratePrivateKey() PrivateKey {
	var k PrivateKey
	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(k.key[:])
	clampPrivateKey(k.key[:])
	return k
}

// NewPrivateKey wraps raw private key bytes as given. X25519 clamps the
// scalar itself when deriving, so unclamped imports still round trip.
func NewPrivateKey(raw [KeySize]byte) PrivateKey {
	return PrivateKey{key: raw}
}

// ParsePrivateKey decodes a base64 encoded private key.
func ParsePrivateKey(s string) (PrivateKey, error) {
	raw, err := decodeKey(s)
	if err != nil {
		return PrivateKey{}, errors.NewKeyError(errors.ErrCodeInvalidPrivateKey, errors.ErrInvalidPrivateKey, err)
	}
	defer clear(raw[:])
	return NewPrivateKey(raw), nil
}

// PublicKey derives the public key by scalar multiplication with the base point.
func (k PrivateKey) PublicKey() PublicKey {
	pub, err := curve25519.X25519(k.key[:], curve25519.Basepoint)
	if err != nil {
		// X25519 only fails for low order points, which the base point is not.
		panic("crypto: deriving public key: " + err.Error())
	}
	var p PublicKey
	copy(p.key[:], pub)
	return p
}

// Bytes returns a copy of the raw key material.
func (k PrivateKey) Bytes() [KeySize]byte { return k.key }

// String returns the base64 encoding used in config files.
func (k PrivateKey) String() string { return Encode(k.key[:]) }

// LogValue keeps private keys out of structured logs.
func (k PrivateKey) LogValue() slog.Value { return slog.StringValue("[redacted]") }

// Equal compares two private keys in constant time.
func (k PrivateKey) Equal(other PrivateKey) bool {
	return subtle.ConstantTimeCompare(k.key[:], other.key[:]) == 1
}

// IsZero reports whether the key is unset or has been wiped.
func (k PrivateKey) IsZero() bool {
	var zero [KeySize]byte
	return subtle.ConstantTimeCompare(k.key[:], zero[:]) == 1
}

// Zeroize overwrites the key material. Copies made before the call are not affected.
func (k *PrivateKey) Zeroize() {
	clear(k.key[:])
}

// NewPublicKey wraps raw public key bytes.
func NewPublicKey(raw [KeySize]byte) PublicKey {
	return PublicKey{key: raw}
}

// ParsePublicKey decodes a base64 encoded public key.
func ParsePublicKey(s string) (PublicKey, error) {
	raw, err := decodeKey(s)
	if err != nil {
		return PublicKey{}, errors.NewKeyError(errors.ErrCodeInvalidPublicKey, errors.ErrInvalidPublicKey, err)
	}
	return PublicKey{key: raw}, nil
}

func (k PublicKey) Bytes() [KeySize]byte { return k.key }

func (k PublicKey) String() string { return Encode(k.key[:]) }

func (k PublicKey) Equal(other PublicKey) bool {
	return subtle.ConstantTimeCompare(k.key[:], other.key[:]) == 1
}

// GeneratePresharedKey returns 32 uniformly random bytes.
func GeneratePresharedKey() PresharedKey {
	var k PresharedKey
	_, _ = rand.Read(k.key[:])
	return k
}

// NewPresharedKey wraps raw preshared key bytes.
func NewPresharedKey(raw [KeySize]byte) PresharedKey {
	return PresharedKey{key: raw}
}

// ParsePresharedKey decodes a base64 encoded preshared key.
func ParsePresharedKey(s string) (PresharedKey, error) {
	raw, err := decodeKey(s)
	if err != nil {
		return PresharedKey{}, errors.NewKeyError(errors.ErrCodeInvalidPresharedKey, errors.ErrInvalidPresharedKey, err)
	}
	return PresharedKey{key: raw}, nil
}

func (k PresharedKey) Bytes() [KeySize]byte { return k.key }

func (k PresharedKey) String() string { return Encode(k.key[:]) }

func (k PresharedKey) LogValue() slog.Value { return slog.StringValue("[redacted]") }

func (k PresharedKey) Equal(other PresharedKey) bool {
	return subtle.ConstantTimeCompare(k.key[:], other.key[:]) == 1
}

// Zeroize overwrites the key material.
func (k *PresharedKey) Zeroize() {
	clear(k.key[:])
}

// Encode returns the standard, padded base64 encoding of raw key bytes.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// decodeKey trims surrounding whitespace, decodes base64 and requires exactly KeySize bytes.
func decodeKey(s string) ([KeySize]byte, error) {
	var raw [KeySize]byte

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return raw, err
	}
	defer clear(decoded)

	if len(decoded) != KeySize {
		return raw, errors.New("key has incorrect length: expected 32 bytes")
	}
	copy(raw[:], decoded)
	return raw, nil
}

// clampPrivateKey applies the clamping function to a private key as specified by WireGuard.
func clampPrivateKey(key []byte) {
	key[0] &= 248
	key[31] &= 127
	key[31] |= 64
}

// IsValidWireGuardKey validates the format of a WireGuard key.
// It checks for correct length and valid base64 encoding.
func IsValidWireGuardKey(key string) bool {
	// WireGuard keys are base64-encoded 32-byte values, which results in 44 characters.
	if len(key) != EncodedKeySize {
		return false
	}

	if !validBase64.MatchString(key) {
		return false
	}

	_, err := decodeKey(key)
	return err == nil
}
