package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/chiquitav2/wireguard-conf/internal/keystore"
	"github.com/chiquitav2/wireguard-conf/pkg/errors"
	"github.com/chiquitav2/wireguard-conf/pkg/logger"
	"github.com/chiquitav2/wireguard-conf/pkg/wgconf"
)

// EnvPrefix prefixes every environment override, e.g. WGCONF_SERVER_ADDRESS.
const EnvPrefix = "WGCONF"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// Viper exposes the underlying instance so command flags can be bound to it.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load searches the default locations for wgconf.yaml. A missing file is
// fine; defaults and environment variables still apply.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupConfigPaths()
	l.setupEnvVars()

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, configError("error reading config file", err)
		}
	}

	return l.decode()
}

// LoadWithPath loads configuration from a specific file, which must exist.
func (l *Loader) LoadWithPath(path string) (*Config, error) {
	l.setDefaults()
	l.setupEnvVars()
	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, configError(fmt.Sprintf("error reading config file %s", path), err)
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, configError("failed to unmarshal config", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, configError("configuration validation failed", err)
	}

	cfg.Server.KeyPath = keystore.ExpandHomeDir(cfg.Server.KeyPath)
	cfg.OutputDir = keystore.ExpandHomeDir(cfg.OutputDir)

	return &cfg, nil
}

// setDefaults sets default configuration values.
func (l *Loader) setDefaults() {
	l.v.SetDefault("server.name", "wg0")
	l.v.SetDefault("server.address", "10.0.0.1/24")
	l.v.SetDefault("server.listen_port", 51820)
	l.v.SetDefault("server.key_path", "~/.wgconf/server.key")
	l.v.SetDefault("server.dns", []string{})
	l.v.SetDefault("server.obfuscation", false)
	l.v.SetDefault("output_dir", "./out")
	l.v.SetDefault("log.level", string(logger.LevelInfo))
	l.v.SetDefault("log.format", string(logger.FormatText))
	l.v.SetDefault("log.component", "wgconf")
	l.v.SetDefault("log.version", "unknown")
	l.v.SetDefault("log.time_format", "15:04:05")
}

// setupConfigPaths configures where to search for config files.
func (l *Loader) setupConfigPaths() {
	l.v.SetConfigName("wgconf")
	l.v.SetConfigType("yaml")

	l.v.AddConfigPath("/etc/wgconf")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home + "/.wgconf")
	}
	l.v.AddConfigPath(".")
}

// setupEnvVars maps nested keys to WGCONF_SECTION_KEY variables.
func (l *Loader) setupEnvVars() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// Validate checks the parts of cfg that would otherwise fail halfway
// through generation.
func Validate(cfg *Config) error {
	if cfg.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	if err := validateFileName(cfg.Server.Name); err != nil {
		return fmt.Errorf("server.name: %w", err)
	}
	if _, err := wgconf.ParsePrefix(cfg.Server.Address); err != nil {
		return fmt.Errorf("server.address: %w", err)
	}
	if cfg.Server.KeyPath == "" {
		return fmt.Errorf("server.key_path is required")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	seen := map[string]bool{cfg.Server.Name: true}
	for n, c := range cfg.Clients {
		if c.Name == "" {
			return fmt.Errorf("clients[%d].name is required", n)
		}
		if err := validateFileName(c.Name); err != nil {
			return fmt.Errorf("clients[%d].name: %w", n, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("clients[%d].name %q is not unique", n, c.Name)
		}
		seen[c.Name] = true

		if len(c.AllowedIPs) == 0 {
			return fmt.Errorf("client %s: at least one allowed_ips entry is required", c.Name)
		}
		if _, err := wgconf.ParsePrefixes(c.AllowedIPs); err != nil {
			return fmt.Errorf("client %s allowed_ips: %w", c.Name, err)
		}
		if _, err := wgconf.ParsePrefixes(c.ExtraAllowedIPs); err != nil {
			return fmt.Errorf("client %s extra_allowed_ips: %w", c.Name, err)
		}
		if c.PersistentKeepalive < 0 {
			return fmt.Errorf("client %s: persistent_keepalive must not be negative", c.Name)
		}
	}

	if _, ok := logger.ParseLevel(string(cfg.Log.Level)); !ok {
		return fmt.Errorf("invalid log.level: %s (must be trace, debug, info, warn, or error)", cfg.Log.Level)
	}
	if cfg.Log.Format != logger.FormatText && cfg.Log.Format != logger.FormatJSON {
		return fmt.Errorf("invalid log.format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}

// validateFileName rejects names that cannot be used as <name>.conf.
func validateFileName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q cannot be used as a file name", name)
	}
	return nil
}

func configError(msg string, err error) error {
	return errors.WrapWithDomain(err, errors.DomainSystem, errors.ErrCodeConfiguration, msg, false)
}
