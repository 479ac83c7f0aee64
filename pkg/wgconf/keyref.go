package wgconf

import (
	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
)

// KeyRef is the key a Peer carries: either a *PrivateKeyRef, when the full
// keypair is known and the peer can be turned into an interface, or a
// *PublicKeyRef when only the remote identity is known. No other
// implementations exist.
type KeyRef interface {
	keyRef()
}

// PrivateKeyRef holds a peer's private key.
type PrivateKeyRef struct {
	Key crypto.PrivateKey
}

// PublicKeyRef holds a peer's public key.
type PublicKeyRef struct {
	Key crypto.PublicKey
}

func (*PrivateKeyRef) keyRef() {}
func (*PublicKeyRef) keyRef()  {}

// NewPrivateKeyRef wraps a private key.
func NewPrivateKeyRef(key crypto.PrivateKey) KeyRef {
	return &PrivateKeyRef{Key: key}
}

// NewPublicKeyRef wraps a public key.
func NewPublicKeyRef(key crypto.PublicKey) KeyRef {
	return &PublicKeyRef{Key: key}
}

// PublicKeyOf returns the public key for ref, deriving it for private refs.
// ok is false for a nil ref.
func PublicKeyOf(ref KeyRef) (key crypto.PublicKey, ok bool) {
	switch k := ref.(type) {
	case *PrivateKeyRef:
		return k.Key.PublicKey(), true
	case *PublicKeyRef:
		return k.Key, true
	default:
		return crypto.PublicKey{}, false
	}
}

func cloneKeyRef(ref KeyRef) KeyRef {
	switch k := ref.(type) {
	case *PrivateKeyRef:
		return &PrivateKeyRef{Key: k.Key}
	case *PublicKeyRef:
		return &PublicKeyRef{Key: k.Key}
	default:
		return nil
	}
}
