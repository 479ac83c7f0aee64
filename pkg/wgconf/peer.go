package wgconf

import (
	"fmt"
	"net/netip"
	"slices"
	"time"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/obfuscation"
)

// Peer is a remote endpoint as seen from an Interface: one [Peer] section.
// Peers are treated as values; change one by cloning it and reassigning
// fields.
type Peer struct {
	// Endpoint is the host:port the peer is reached at, empty when unknown.
	Endpoint string
	// AllowedIPs are the networks the peer may send from and receive for.
	// Order is kept; ToInterface picks the first match.
	AllowedIPs []netip.Prefix
	// Key is a *PrivateKeyRef or a *PublicKeyRef.
	Key          KeyRef
	PresharedKey *crypto.PresharedKey
	// PersistentKeepalive is 0 when disabled.
	PersistentKeepalive time.Duration
	// Obfuscation is handed to the interface ToInterface derives.
	Obfuscation *obfuscation.Settings
}

// PeerOptions collects the optional parts of a Peer.
type PeerOptions struct {
	Endpoint   string
	AllowedIPs []netip.Prefix
	// Key defaults to a freshly generated private key.
	Key                 KeyRef
	PresharedKey        *crypto.PresharedKey
	PersistentKeepalive time.Duration
	Obfuscation         *obfuscation.Settings
}

// NewPeer builds a Peer, generating a private key when no key is given and
// validating allowed IPs and obfuscation settings.
func NewPeer(opts PeerOptions) (Peer, error) {
	for _, p := range opts.AllowedIPs {
		if err := validatePrefix(p); err != nil {
			return Peer{}, fmt.Errorf("peer allowed ip: %w", err)
		}
	}
	if opts.Obfuscation != nil {
		if err := opts.Obfuscation.Validate(); err != nil {
			return Peer{}, err
		}
	}

	key := cloneKeyRef(opts.Key)
	if key == nil {
		key = NewPrivateKeyRef(crypto.GeneratePrivateKey())
	}

	var psk *crypto.PresharedKey
	if opts.PresharedKey != nil {
		k := *opts.PresharedKey
		psk = &k
	}

	return Peer{
		Endpoint:            opts.Endpoint,
		AllowedIPs:          slices.Clone(opts.AllowedIPs),
		Key:                 key,
		PresharedKey:        psk,
		PersistentKeepalive: opts.PersistentKeepalive,
		Obfuscation:         opts.Obfuscation.Clone(),
	}, nil
}

// Clone returns a deep copy of p.
func (p *Peer) Clone() Peer {
	c := *p
	c.AllowedIPs = slices.Clone(p.AllowedIPs)
	c.Key = cloneKeyRef(p.Key)
	if p.PresharedKey != nil {
		k := *p.PresharedKey
		c.PresharedKey = &k
	}
	c.Obfuscation = p.Obfuscation.Clone()
	return c
}

// Zeroize wipes the peer's private and preshared keys in place.
func (p *Peer) Zeroize() {
	switch k := p.Key.(type) {
	case *PrivateKeyRef:
		k.Key.Zeroize()
	case *PublicKeyRef, nil:
	}
	if p.PresharedKey != nil {
		p.PresharedKey.Zeroize()
	}
}
