package wgconf

import (
	"fmt"
	"io"
	"net/netip"
	"strings"
	"time"
)

// String renders the interface and its peers in wg-quick syntax. Empty
// fields are left out; nothing is validated.
func (i *Interface) String() string {
	var b strings.Builder

	b.WriteString("[Interface]\n")
	if i.Endpoint != "" {
		fmt.Fprintf(&b, "# Name = %s\n", i.Endpoint)
	}
	fmt.Fprintf(&b, "Address = %s\n", i.Address)
	if i.ListenPort != 0 {
		fmt.Fprintf(&b, "ListenPort = %d\n", i.ListenPort)
	}
	fmt.Fprintf(&b, "PrivateKey = %s\n", i.PrivateKey)
	if len(i.DNS) > 0 {
		fmt.Fprintf(&b, "DNS = %s\n", strings.Join(i.DNS, ","))
	}

	if i.Obfuscation != nil {
		b.WriteString("\n")
		b.WriteString(i.Obfuscation.String())
	}

	for n := range i.Peers {
		b.WriteString("\n")
		b.WriteString(i.Peers[n].String())
	}

	return b.String()
}

// WriteTo writes the rendered interface to w.
func (i *Interface) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, i.String())
	return int64(n), err
}

// String renders a [Peer] section. The public key is derived when the peer
// holds a private key; private key material is never written.
func (p *Peer) String() string {
	var b strings.Builder

	b.WriteString("[Peer]\n")
	if p.Endpoint != "" {
		fmt.Fprintf(&b, "Endpoint = %s\n", p.Endpoint)
	}
	if len(p.AllowedIPs) > 0 {
		fmt.Fprintf(&b, "AllowedIPs = %s\n", joinPrefixes(p.AllowedIPs))
	}
	if key, ok := PublicKeyOf(p.Key); ok {
		fmt.Fprintf(&b, "PublicKey = %s\n", key)
	}
	if p.PresharedKey != nil {
		fmt.Fprintf(&b, "PresharedKey = %s\n", p.PresharedKey)
	}
	if secs := int64(p.PersistentKeepalive / time.Second); secs > 0 {
		fmt.Fprintf(&b, "PersistentKeepalive = %d\n", secs)
	}

	return b.String()
}

// WriteTo writes the rendered peer section to w.
func (p *Peer) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.String())
	return int64(n), err
}

func joinPrefixes(prefixes []netip.Prefix) string {
	parts := make([]string, len(prefixes))
	for n, p := range prefixes {
		parts[n] = p.String()
	}
	return strings.Join(parts, ",")
}
