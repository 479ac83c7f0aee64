package wgconf

import (
	"fmt"
	"net"
	"net/netip"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// DeviceConfig converts the interface into a wgctrl device configuration
// that replaces all existing peers. Address, DNS and obfuscation settings
// have no wgctrl counterpart and are not carried over.
func (i *Interface) DeviceConfig() (wgtypes.Config, error) {
	key := wgtypes.Key(i.PrivateKey.Bytes())
	cfg := wgtypes.Config{
		PrivateKey:   &key,
		ReplacePeers: true,
		Peers:        make([]wgtypes.PeerConfig, 0, len(i.Peers)),
	}
	if i.ListenPort != 0 {
		port := int(i.ListenPort)
		cfg.ListenPort = &port
	}

	for n := range i.Peers {
		pc, err := i.Peers[n].PeerConfig()
		if err != nil {
			return wgtypes.Config{}, fmt.Errorf("peer %d: %w", n, err)
		}
		cfg.Peers = append(cfg.Peers, pc)
	}

	return cfg, nil
}

// PeerConfig converts the peer into a wgctrl peer configuration. The
// endpoint must be a literal ip:port; names are not resolved.
func (p *Peer) PeerConfig() (wgtypes.PeerConfig, error) {
	pub, ok := PublicKeyOf(p.Key)
	if !ok {
		return wgtypes.PeerConfig{}, errors.NewKeyError(errors.ErrCodeInvalidPublicKey, errors.ErrInvalidPublicKey, nil)
	}

	pc := wgtypes.PeerConfig{
		PublicKey:         wgtypes.Key(pub.Bytes()),
		ReplaceAllowedIPs: true,
		AllowedIPs:        make([]net.IPNet, 0, len(p.AllowedIPs)),
	}

	if p.PresharedKey != nil {
		psk := wgtypes.Key(p.PresharedKey.Bytes())
		pc.PresharedKey = &psk
	}
	if p.PersistentKeepalive > 0 {
		interval := p.PersistentKeepalive
		pc.PersistentKeepaliveInterval = &interval
	}
	if p.Endpoint != "" {
		addrPort, err := netip.ParseAddrPort(p.Endpoint)
		if err != nil {
			return wgtypes.PeerConfig{}, errors.NewAddressError(errors.ErrCodeInvalidEndpoint, p.Endpoint, err)
		}
		pc.Endpoint = net.UDPAddrFromAddrPort(addrPort)
	}

	for _, prefix := range p.AllowedIPs {
		masked := prefix.Masked()
		pc.AllowedIPs = append(pc.AllowedIPs, net.IPNet{
			IP:   net.IP(masked.Addr().AsSlice()),
			Mask: net.CIDRMask(masked.Bits(), masked.Addr().BitLen()),
		})
	}

	return pc, nil
}
