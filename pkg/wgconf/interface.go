package wgconf

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/obfuscation"
)

// Interface is the local side of a tunnel: the [Interface] section of a
// config file plus the peers it trusts.
type Interface struct {
	// Address is the tunnel address with its network mask, e.g. 10.0.0.1/24.
	Address netip.Prefix
	// ListenPort is the UDP port to listen on, 0 when unset.
	ListenPort uint16
	PrivateKey crypto.PrivateKey
	// DNS servers in the order they are written.
	DNS []string
	// Endpoint is a descriptive label rendered as a "# Name" comment. ToPeer
	// copies it into the peer's Endpoint, so it is usually host:port.
	Endpoint string
	// Obfuscation is nil for plain WireGuard.
	Obfuscation *obfuscation.Settings
	Peers       []Peer
}

// InterfaceOptions collects the optional parts of an Interface. Only Address
// is required.
type InterfaceOptions struct {
	Address    netip.Prefix
	ListenPort uint16
	// PrivateKey defaults to a freshly generated key.
	PrivateKey  *crypto.PrivateKey
	DNS         []string
	Endpoint    string
	Obfuscation *obfuscation.Settings
	Peers       []Peer
}

// NewInterface builds an Interface, generating a private key when none is
// given and validating the address and obfuscation settings.
func NewInterface(opts InterfaceOptions) (*Interface, error) {
	if err := validatePrefix(opts.Address); err != nil {
		return nil, fmt.Errorf("interface address: %w", err)
	}
	if opts.Obfuscation != nil {
		if err := opts.Obfuscation.Validate(); err != nil {
			return nil, err
		}
	}

	var key crypto.PrivateKey
	if opts.PrivateKey != nil {
		key = *opts.PrivateKey
	} else {
		key = crypto.GeneratePrivateKey()
	}

	peers := make([]Peer, 0, len(opts.Peers))
	for _, p := range opts.Peers {
		peers = append(peers, p.Clone())
	}

	return &Interface{
		Address:     opts.Address,
		ListenPort:  opts.ListenPort,
		PrivateKey:  key,
		DNS:         slices.Clone(opts.DNS),
		Endpoint:    opts.Endpoint,
		Obfuscation: opts.Obfuscation.Clone(),
		Peers:       peers,
	}, nil
}

// AddPeer appends a copy of p.
func (i *Interface) AddPeer(p Peer) {
	i.Peers = append(i.Peers, p.Clone())
}

// PublicKey derives the interface's public key.
func (i *Interface) PublicKey() crypto.PublicKey {
	return i.PrivateKey.PublicKey()
}

// Clone returns a deep copy of i, peers included.
func (i *Interface) Clone() *Interface {
	c := *i
	c.DNS = slices.Clone(i.DNS)
	c.Obfuscation = i.Obfuscation.Clone()
	if i.Peers != nil {
		c.Peers = make([]Peer, len(i.Peers))
		for n, p := range i.Peers {
			c.Peers[n] = p.Clone()
		}
	}
	return &c
}

// Zeroize wipes the interface's private key and every secret held by its
// peers. Call it, typically deferred, once a config has been written.
func (i *Interface) Zeroize() {
	i.PrivateKey.Zeroize()
	for n := range i.Peers {
		i.Peers[n].Zeroize()
	}
}
