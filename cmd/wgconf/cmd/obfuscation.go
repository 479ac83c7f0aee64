package cmd

import (
	"fmt"

	"github.com/gookit/goutil/mathutil"
	"github.com/gookit/goutil/strutil"
	"github.com/spf13/cobra"

	"github.com/chiquitav2/wireguard-conf/pkg/obfuscation"
)

// maxSettingValue keeps header values within the 32-bit message type field.
const maxSettingValue = 1<<32 - 1

var obfuscationCmd = &cobra.Command{
	Use:   "obfuscation",
	Short: "Generate or validate AmneziaWG obfuscation settings",
	Long: `Print a random set of AmneziaWG obfuscation settings, or validate
nine comma separated values given in Jc,Jmin,Jmax,S1,S2,H1,H2,H3,H4 order.

Examples:
  wgconf obfuscation
  wgconf obfuscation --validate 4,40,70,50,60,1,2,3,4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values, _ := cmd.Flags().GetString("validate")
		if values == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), obfuscation.Random().String())
			return err
		}

		settings, err := parseSettings(values)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), settings.String())
		return err
	},
}

// parseSettings reads nine comma separated values. Blank entries are
// dropped, so "4,,40" counts as two values.
func parseSettings(values string) (*obfuscation.Settings, error) {
	parts := strutil.Split(values, ",")
	if len(parts) != 9 {
		return nil, fmt.Errorf("expected 9 values, got %d", len(parts))
	}

	nums := make([]uint, len(parts))
	for n, p := range parts {
		v, err := mathutil.ToUint(p)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", n+1, err)
		}
		if v > maxSettingValue {
			return nil, fmt.Errorf("value %d: %d is out of range", n+1, v)
		}
		nums[n] = uint(v)
	}

	return obfuscation.New(nums[0], nums[1], nums[2], nums[3], nums[4], nums[5], nums[6], nums[7], nums[8])
}

func init() {
	rootCmd.AddCommand(obfuscationCmd)

	obfuscationCmd.Flags().String("validate", "", "comma separated Jc,Jmin,Jmax,S1,S2,H1,H2,H3,H4 to validate")
}
