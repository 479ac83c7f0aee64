package wgconf

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

func TestDeviceConfig(t *testing.T) {
	server := newServer(t)
	psk := crypto.GeneratePresharedKey()
	clientKey := crypto.GeneratePrivateKey()
	peer, err := NewPeer(PeerOptions{
		Endpoint:            "203.0.113.7:51820",
		AllowedIPs:          []netip.Prefix{MustParsePrefix("10.0.0.2/32"), MustParsePrefix("192.168.10.5/24")},
		Key:                 NewPrivateKeyRef(clientKey),
		PresharedKey:        &psk,
		PersistentKeepalive: 25 * time.Second,
	})
	require.NoError(t, err)
	server.AddPeer(peer)

	cfg, err := server.DeviceConfig()
	require.NoError(t, err)

	require.NotNil(t, cfg.PrivateKey)
	assert.Equal(t, wgtypes.Key(server.PrivateKey.Bytes()), *cfg.PrivateKey)
	assert.Equal(t, server.PublicKey().Bytes(), [crypto.KeySize]byte(cfg.PrivateKey.PublicKey()))
	require.NotNil(t, cfg.ListenPort)
	assert.Equal(t, 51820, *cfg.ListenPort)
	assert.True(t, cfg.ReplacePeers)

	require.Len(t, cfg.Peers, 1)
	pc := cfg.Peers[0]
	assert.Equal(t, wgtypes.Key(clientKey.PublicKey().Bytes()), pc.PublicKey)
	require.NotNil(t, pc.PresharedKey)
	assert.Equal(t, wgtypes.Key(psk.Bytes()), *pc.PresharedKey)
	require.NotNil(t, pc.PersistentKeepaliveInterval)
	assert.Equal(t, 25*time.Second, *pc.PersistentKeepaliveInterval)
	assert.Equal(t, "203.0.113.7:51820", pc.Endpoint.String())
	assert.True(t, pc.ReplaceAllowedIPs)
	require.Len(t, pc.AllowedIPs, 2)
	assert.Equal(t, "10.0.0.2/32", pc.AllowedIPs[0].String())
	assert.Equal(t, "192.168.10.0/24", pc.AllowedIPs[1].String())
}

func TestDeviceConfigOmitsUnsetFields(t *testing.T) {
	iface, err := NewInterface(InterfaceOptions{Address: MustParsePrefix("10.0.0.2/32")})
	require.NoError(t, err)
	iface.AddPeer(Peer{Key: NewPublicKeyRef(crypto.GeneratePrivateKey().PublicKey())})

	cfg, err := iface.DeviceConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.ListenPort)

	pc := cfg.Peers[0]
	assert.Nil(t, pc.PresharedKey)
	assert.Nil(t, pc.PersistentKeepaliveInterval)
	assert.Nil(t, pc.Endpoint)
	assert.Empty(t, pc.AllowedIPs)
}

func TestPeerConfigErrors(t *testing.T) {
	t.Run("hostname endpoint", func(t *testing.T) {
		peer := Peer{Endpoint: "vpn.example.com:51820", Key: NewPublicKeyRef(crypto.PublicKey{})}
		_, err := peer.PeerConfig()
		require.ErrorIs(t, err, errors.ErrInvalidEndpoint)
		assert.True(t, errors.HasErrorCode(err, errors.ErrCodeInvalidEndpoint))
	})

	t.Run("missing key", func(t *testing.T) {
		peer := Peer{}
		_, err := peer.PeerConfig()
		assert.ErrorIs(t, err, errors.ErrInvalidPublicKey)
	})

	t.Run("propagates through device config", func(t *testing.T) {
		iface, err := NewInterface(InterfaceOptions{Address: MustParsePrefix("10.0.0.1/24")})
		require.NoError(t, err)
		iface.AddPeer(Peer{Endpoint: "nope", Key: NewPublicKeyRef(crypto.PublicKey{})})

		_, err = iface.DeviceConfig()
		assert.ErrorIs(t, err, errors.ErrInvalidEndpoint)
	})
}

func TestPeerConfigUDPEndpoint(t *testing.T) {
	peer := Peer{Endpoint: "198.51.100.1:1234", Key: NewPublicKeyRef(crypto.PublicKey{})}
	pc, err := peer.PeerConfig()
	require.NoError(t, err)
	assert.Equal(t, &net.UDPAddr{IP: net.ParseIP("198.51.100.1").To4(), Port: 1234}, pc.Endpoint)
}
