// Package cmd holds the wgconf command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wgconf",
	Short: "Generate WireGuard and AmneziaWG configuration",
	Long: `wgconf generates WireGuard keys, AmneziaWG obfuscation settings and
complete server and client configuration files.

Examples:
  # Generate a key pair
  wgconf genkey | tee server.key | wgconf pubkey

  # Generate configs for every client in wgconf.yaml
  wgconf generate --config wgconf.yaml`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to the process exit status: 2 for an
// unusable configuration, 1 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.HasErrorCode(err, errors.ErrCodeConfiguration):
		return 2
	default:
		return 1
	}
}
