package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
)

// maxKeyInput bounds what pubkey reads from stdin.
const maxKeyInput = 1024

var genkeyCmd = &cobra.Command{
	Use:   "genkey",
	Short: "Generate a new private key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := crypto.GeneratePrivateKey()
		defer key.Zeroize()

		_, err := fmt.Fprintln(cmd.OutOrStdout(), key.String())
		return err
	},
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey",
	Short: "Derive a public key from a private key read on stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxKeyInput))
		if err != nil {
			return fmt.Errorf("failed to read private key: %w", err)
		}
		defer clear(input)

		key, err := crypto.ParsePrivateKey(string(input))
		if err != nil {
			return err
		}
		defer key.Zeroize()

		_, err = fmt.Fprintln(cmd.OutOrStdout(), key.PublicKey().String())
		return err
	},
}

var genpskCmd = &cobra.Command{
	Use:   "genpsk",
	Short: "Generate a new preshared key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := crypto.GeneratePresharedKey()
		defer key.Zeroize()

		_, err := fmt.Fprintln(cmd.OutOrStdout(), key.String())
		return err
	},
}

func init() {
	rootCmd.AddCommand(genkeyCmd)
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(genpskCmd)
}
