package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiquitav2/wireguard-conf/internal/config"
	"github.com/chiquitav2/wireguard-conf/internal/generator"
	"github.com/chiquitav2/wireguard-conf/internal/keystore"
	"github.com/chiquitav2/wireguard-conf/pkg/logger"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate server and client configuration files",
	Long: `Generate a server config and one config per client from wgconf.yaml.

The server key is loaded from server.key_path, or created there on first
run. Client keys are generated fresh every run and only stored in the
client configs. Settings can be overridden with WGCONF_* environment
variables, e.g. WGCONF_OUTPUT_DIR.

Examples:
  # Search /etc/wgconf, ~/.wgconf and the working directory
  wgconf generate

  # Use an explicit config file
  wgconf generate --config ./wgconf.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		loader := config.NewLoader()
		if outputDir, _ := cmd.Flags().GetString("output-dir"); outputDir != "" {
			loader.Viper().Set("output_dir", outputDir)
		}

		var (
			cfg *config.Config
			err error
		)
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err = loader.LoadWithPath(path)
		} else {
			cfg, err = loader.Load()
		}
		if err != nil {
			return err
		}

		logCfg := cfg.Log
		logCfg.Version = Version
		logCfg.Output = cmd.ErrOrStderr()
		log := logger.New(logCfg)

		bus := generator.NewEventBus(log)
		defer bus.Close()
		bus.SubscribeWritten(func(e generator.ConfigWrittenEvent) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", e.Name, e.PublicKey, e.Path)
		})

		gen := generator.New(keystore.New(log), bus, log)
		result, err := gen.Generate(ctx, cfg)
		if err != nil {
			return err
		}

		if result.ServerKeyCreated {
			fmt.Fprintf(cmd.ErrOrStderr(), "created server key %s\n", cfg.Server.KeyPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("config", "c", "", "config file (default: wgconf.yaml in /etc/wgconf, ~/.wgconf or .)")
	generateCmd.Flags().StringP("output-dir", "o", "", "directory to write configs to, overrides output_dir")
}
