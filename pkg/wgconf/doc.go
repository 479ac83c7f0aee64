// Package wgconf models WireGuard and AmneziaWG interfaces and peers, converts
// between a node's own interface and the peer record other nodes need, and
// renders both as wg-quick config text.
//
// A server interface and its client configs can be produced like this:
//
//	peer, _ := wgconf.NewPeer(wgconf.PeerOptions{
//		AllowedIPs: []netip.Prefix{wgconf.MustParsePrefix("10.0.0.2/32")},
//	})
//	server, _ := wgconf.NewInterface(wgconf.InterfaceOptions{
//		Address: wgconf.MustParsePrefix("10.0.0.1/24"),
//		Peers:   []wgconf.Peer{peer},
//	})
//	client, _ := peer.ToInterface(server)
//	fmt.Print(server, client)
package wgconf
