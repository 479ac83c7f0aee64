package wgconf

import (
	"net/netip"
	"slices"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// ToPeer returns the peer record a remote node uses to reach this
// interface. The whole interface network becomes the allowed IPs and the
// private key is carried along, so the result can be turned back into an
// interface. Preshared key and keepalive are left unset.
func (i *Interface) ToPeer() Peer {
	return Peer{
		Endpoint:    i.Endpoint,
		AllowedIPs:  []netip.Prefix{i.Address},
		Key:         NewPrivateKeyRef(i.PrivateKey),
		Obfuscation: i.Obfuscation.Clone(),
	}
}

// ToInterface builds the standalone interface this peer runs when it
// connects to ref. The first allowed IP that intersects ref's network
// becomes the address, DNS comes from ref, obfuscation from the peer, and
// ref itself, via ToPeer, is the only peer.
//
// It fails with errors.ErrNoPrivateKeyProvided when the peer only holds a
// public key and with errors.ErrNoAssignedIP when no allowed IP matches.
func (p *Peer) ToInterface(ref *Interface) (*Interface, error) {
	var iface Interface

	switch k := p.Key.(type) {
	case *PrivateKeyRef:
		iface.PrivateKey = k.Key
	case *PublicKeyRef, nil:
		return nil, errors.NewConversionError(errors.ErrCodeNoPrivateKey, errors.ErrNoPrivateKeyProvided)
	}

	address, ok := assignedAddress(p.AllowedIPs, ref.Address)
	if !ok {
		return nil, errors.NewConversionError(errors.ErrCodeNoAssignedIP, errors.ErrNoAssignedIP).
			WithMetadata("network", ref.Address.String())
	}

	iface.Address = address
	iface.DNS = slices.Clone(ref.DNS)
	iface.Obfuscation = p.Obfuscation.Clone()
	iface.Peers = []Peer{ref.ToPeer()}

	return &iface, nil
}

// assignedAddress returns the first candidate sharing addresses with
// network. For CIDR blocks that means one contains the other.
func assignedAddress(candidates []netip.Prefix, network netip.Prefix) (netip.Prefix, bool) {
	for _, c := range candidates {
		if c.Overlaps(network) {
			return c, true
		}
	}
	return netip.Prefix{}, false
}
