package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiquitav2/wireguard-conf/pkg/crypto"
	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestGenkeyPubkey(t *testing.T) {
	private, err := run(t, "", "genkey")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(private), crypto.EncodedKeySize)

	key, err := crypto.ParsePrivateKey(private)
	require.NoError(t, err)

	public, err := run(t, private, "pubkey")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().String()+"\n", public)
}

func TestPubkeyRejectsGarbage(t *testing.T) {
	_, err := run(t, "not a key\n", "pubkey")
	assert.ErrorIs(t, err, errors.ErrInvalidPrivateKey)
}

func TestGenpsk(t *testing.T) {
	a, err := run(t, "", "genpsk")
	require.NoError(t, err)
	b, err := run(t, "", "genpsk")
	require.NoError(t, err)

	_, err = crypto.ParsePresharedKey(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestObfuscation(t *testing.T) {
	out, err := run(t, "", "obfuscation")
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "Jc = "))

	out, err = run(t, "", "obfuscation", "--validate", "4,40,70,50,60,1,2,3,4")
	require.NoError(t, err)
	assert.Equal(t, "Jc = 4\nJmin = 40\nJmax = 70\nS1 = 50\nS2 = 60\nH1 = 1\nH2 = 2\nH3 = 3\nH4 = 4\n", out)

	_, err = run(t, "", "obfuscation", "--validate", "4,40,70,50,106,1,2,3,4")
	require.ErrorIs(t, err, errors.ErrInvalidObfuscationSetting)
	field, _ := errors.SettingField(err)
	assert.Equal(t, "S1", field)

	_, err = run(t, "", "obfuscation", "--validate", "4,40,70")
	assert.ErrorContains(t, err, "expected 9 values")

	_, err = run(t, "", "obfuscation", "--validate", "4,40,70,50,60,1,2,3,x")
	assert.ErrorContains(t, err, "value 9")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wgconf.yaml")
	content := `
server:
  name: hub
  address: 10.9.0.1/24
  key_path: ` + filepath.Join(dir, "hub.key") + `
clients:
  - name: alice
    allowed_ips: [10.9.0.2/32]
log:
  format: json
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "", "generate", "--config", cfgPath, "--output-dir", outDir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "hub\t"))
	assert.True(t, strings.HasSuffix(lines[1], filepath.Join(outDir, "alice.conf")))

	_, err = os.Stat(filepath.Join(outDir, "hub.conf"))
	assert.NoError(t, err)
}

func TestGenerateInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "wgconf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: {address: nonsense}\n"), 0600))

	_, err := run(t, "", "generate", "--config", cfgPath)
	assert.ErrorIs(t, err, errors.ErrInvalidAddress)
	assert.Equal(t, 2, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))

	_, err := run(t, "not a key", "pubkey")
	assert.Equal(t, 1, ExitCode(err))
}

func TestParseSettings(t *testing.T) {
	settings, err := parseSettings(" 4, 40 ,70,50,60,1,2,3,4 ")
	require.NoError(t, err)
	assert.Equal(t, uint(40), settings.Jmin)
	assert.Equal(t, uint(4), settings.H4)

	tests := []struct {
		name    string
		values  string
		wantErr string
	}{
		{"too few", "4,40,70,50,60,1,2,3", "expected 9 values"},
		{"blank entries dropped", "4,,40,70,50,60,1,2,3", "expected 9 values"},
		{"not a number", "4,40,70,50,60,1,2,x,4", "value 8"},
		{"negative", "4,40,70,50,60,-1,2,3,4", "value 6"},
		{"out of range", "4,40,70,50,60,1,2,3,4294967296", "value 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSettings(tt.values)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
