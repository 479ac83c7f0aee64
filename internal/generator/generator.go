// Package generator turns an app config into a server config file plus one
// config file per client.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/chiquitav2/wireguard-conf/internal/config"
	"github.com/chiquitav2/wireguard-conf/internal/keystore"
	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/errors"
	"github.com/chiquitav2/wireguard-conf/pkg/logger"
	"github.com/chiquitav2/wireguard-conf/pkg/obfuscation"
	"github.com/chiquitav2/wireguard-conf/pkg/wgconf"
)

// configFileMode keeps rendered configs, which hold private keys, owner-only.
const configFileMode = 0600

// Generation stages reported in FailedEvent.
const (
	StageServerKey = "server_key"
	StageBuild     = "build"
	StageWrite     = "write"
)

// Result describes the files a run produced. Key material is not retained.
type Result struct {
	CorrelationID   string
	ServerPath      string
	ServerPublicKey crypto.PublicKey
	// ServerKeyCreated is true when no key existed at the configured path.
	ServerKeyCreated bool
	Clients          []ClientResult
}

// ClientResult describes one generated client config.
type ClientResult struct {
	Name      string
	Path      string
	Address   string
	PublicKey crypto.PublicKey
}

// Generator builds and writes configs.
type Generator struct {
	store  *keystore.Store
	events *EventBus
	logger *logger.Logger
}

// New creates a generator. A nil events bus disables events.
func New(store *keystore.Store, events *EventBus, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = keystore.New(log)
	}
	return &Generator{
		store:  store,
		events: events,
		logger: log.WithComponent("generator"),
	}
}

// Generate loads or creates the server key, derives every client's config
// from the server interface and writes all files to cfg.OutputDir.
func (g *Generator) Generate(ctx context.Context, cfg *config.Config) (*Result, error) {
	result := &Result{CorrelationID: uuid.NewString()}
	ctx = logger.WithCorrelationID(ctx, result.CorrelationID)
	ctx = logger.WithOperation(ctx, "generate")
	ctx = logger.WithInterface(ctx, cfg.Server.Name)

	g.logger.WithContext(ctx).Info("generating configs",
		"clients", len(cfg.Clients), "output_dir", cfg.OutputDir)

	serverKey, created, err := g.store.LoadOrCreate(ctx, cfg.Server.KeyPath)
	if err != nil {
		return nil, g.fail(ctx, cfg.Server.Name, StageServerKey, err)
	}
	result.ServerKeyCreated = created

	server, err := buildServer(cfg, serverKey)
	serverKey.Zeroize()
	if err != nil {
		return nil, g.fail(ctx, cfg.Server.Name, StageBuild, err)
	}
	defer server.Zeroize()
	result.ServerPublicKey = server.PublicKey()

	clients := make([]*wgconf.Interface, 0, len(cfg.Clients))
	defer func() {
		for _, c := range clients {
			c.Zeroize()
		}
	}()
	for n, cc := range cfg.Clients {
		client, err := buildClient(server, n, cc)
		if err != nil {
			return nil, g.fail(logger.WithPeer(ctx, cc.Name), cc.Name, StageBuild, err)
		}
		clients = append(clients, client)
	}

	result.ServerPath = filepath.Join(cfg.OutputDir, cfg.Server.Name+".conf")
	if err := g.write(ctx, server, cfg.Server.Name, result.ServerPath); err != nil {
		return nil, g.fail(ctx, cfg.Server.Name, StageWrite, err)
	}
	g.publish(ctx, EventServerWritten, ConfigWrittenEvent{
		CorrelationID: result.CorrelationID,
		Name:          cfg.Server.Name,
		Path:          result.ServerPath,
		PublicKey:     result.ServerPublicKey.String(),
		Peers:         len(server.Peers),
		Timestamp:     time.Now(),
	})

	for n, client := range clients {
		name := cfg.Clients[n].Name
		clientCtx := logger.WithPeer(ctx, name)
		path := filepath.Join(cfg.OutputDir, name+".conf")

		if err := g.write(clientCtx, client, name, path); err != nil {
			return nil, g.fail(clientCtx, name, StageWrite, err)
		}

		res := ClientResult{
			Name:      name,
			Path:      path,
			Address:   client.Address.String(),
			PublicKey: client.PublicKey(),
		}
		result.Clients = append(result.Clients, res)
		g.publish(clientCtx, EventClientWritten, ConfigWrittenEvent{
			CorrelationID: result.CorrelationID,
			Name:          name,
			Path:          path,
			PublicKey:     res.PublicKey.String(),
			Peers:         len(client.Peers),
			Timestamp:     time.Now(),
		})
	}

	g.logger.WithContext(ctx).Info("configs generated",
		"server", result.ServerPath, "clients", len(result.Clients))
	return result, nil
}

// buildServer creates the server interface with one peer per client. Each
// peer keeps the client's private key so it can be turned into the client's
// own interface.
func buildServer(cfg *config.Config, key crypto.PrivateKey) (*wgconf.Interface, error) {
	address, err := wgconf.ParsePrefix(cfg.Server.Address)
	if err != nil {
		return nil, fmt.Errorf("server address: %w", err)
	}

	var settings *obfuscation.Settings
	if cfg.Server.Obfuscation {
		s := obfuscation.Random()
		settings = &s
	}

	server, err := wgconf.NewInterface(wgconf.InterfaceOptions{
		Address:     address,
		ListenPort:  cfg.Server.ListenPort,
		PrivateKey:  &key,
		DNS:         cfg.Server.DNS,
		Endpoint:    cfg.Server.Endpoint(),
		Obfuscation: settings,
	})
	if err != nil {
		return nil, err
	}

	for _, cc := range cfg.Clients {
		allowed, err := wgconf.ParsePrefixes(cc.AllowedIPs)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", cc.Name, err)
		}

		opts := wgconf.PeerOptions{
			AllowedIPs:          allowed,
			PersistentKeepalive: cc.PersistentKeepalive,
			Obfuscation:         settings,
		}
		if cc.PresharedKey {
			psk := crypto.GeneratePresharedKey()
			opts.PresharedKey = &psk
		}

		peer, err := wgconf.NewPeer(opts)
		if opts.PresharedKey != nil {
			opts.PresharedKey.Zeroize()
		}
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", cc.Name, err)
		}
		server.AddPeer(peer)
		peer.Zeroize()
	}

	return server, nil
}

// buildClient converts the server's n-th peer into the client's interface.
// The server peer it gets back shares the preshared key and keepalive and
// additionally routes ExtraAllowedIPs.
func buildClient(server *wgconf.Interface, n int, cc config.ClientConfig) (*wgconf.Interface, error) {
	peer := &server.Peers[n]

	client, err := peer.ToInterface(server)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", cc.Name, err)
	}

	extra, err := wgconf.ParsePrefixes(cc.ExtraAllowedIPs)
	if err != nil {
		client.Zeroize()
		return nil, fmt.Errorf("client %s: %w", cc.Name, err)
	}

	serverPeer := &client.Peers[0]
	serverPeer.AllowedIPs = append(serverPeer.AllowedIPs, extra...)
	if peer.PresharedKey != nil {
		psk := *peer.PresharedKey
		serverPeer.PresharedKey = &psk
	}
	serverPeer.PersistentKeepalive = peer.PersistentKeepalive

	return client, nil
}

func (g *Generator) write(ctx context.Context, iface *wgconf.Interface, name, path string) error {
	start := time.Now()
	data := []byte(iface.String())
	defer clear(data)

	if err := keystore.WriteFileAtomic(path, data, configFileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	g.logger.ConfigWritten(logger.WithConfigPath(ctx, path), name, path, len(iface.Peers), time.Since(start))
	return nil
}

// publish fires name with payload. Listener errors are logged and do not
// fail the run.
func (g *Generator) publish(ctx context.Context, name string, payload any) {
	if g.events == nil {
		return
	}
	if err := g.events.fire(name, payload); err != nil {
		g.logger.ErrorCtx(ctx, "event listener failed", err, "event", name)
	}
}

// fail logs err, fires a failed event and returns err unchanged.
func (g *Generator) fail(ctx context.Context, name, stage string, err error) error {
	g.logger.ErrorCtx(ctx, "config generation failed", err, "stage", stage)

	g.publish(ctx, EventFailed, FailedEvent{
		CorrelationID: logger.GetCorrelationID(ctx),
		Name:          name,
		Stage:         stage,
		Error:         err.Error(),
		Domain:        errors.GetErrorDomain(err),
		Code:          errors.GetErrorCode(err),
		Timestamp:     time.Now(),
	})
	return err
}
