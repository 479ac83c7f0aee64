// Package config loads the generator configuration from YAML files and
// WGCONF_ environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/chiquitav2/wireguard-conf/pkg/logger"
)

// Config is the full generator configuration.
type Config struct {
	Server    ServerConfig        `mapstructure:"server"`
	Clients   []ClientConfig      `mapstructure:"clients"`
	OutputDir string              `mapstructure:"output_dir"`
	Log       logger.LoggerConfig `mapstructure:"log"`
}

// ServerConfig describes the hub interface every client connects to.
type ServerConfig struct {
	// Name labels the server config and is the host clients dial.
	Name       string   `mapstructure:"name"`
	Address    string   `mapstructure:"address"`
	ListenPort uint16   `mapstructure:"listen_port"`
	KeyPath    string   `mapstructure:"key_path"`
	DNS        []string `mapstructure:"dns"`
	// Obfuscation attaches randomly drawn AmneziaWG settings to the server
	// and every client.
	Obfuscation bool `mapstructure:"obfuscation"`
}

// Endpoint is the host:port clients use to reach the server.
func (s ServerConfig) Endpoint() string {
	if s.ListenPort == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s:%d", s.Name, s.ListenPort)
}

// ClientConfig describes one client peer.
type ClientConfig struct {
	Name       string   `mapstructure:"name"`
	AllowedIPs []string `mapstructure:"allowed_ips"`
	// ExtraAllowedIPs are routed through the server on the client side,
	// e.g. 0.0.0.0/0 for a full tunnel.
	ExtraAllowedIPs     []string      `mapstructure:"extra_allowed_ips"`
	PresharedKey        bool          `mapstructure:"preshared_key"`
	PersistentKeepalive time.Duration `mapstructure:"persistent_keepalive"`
}
