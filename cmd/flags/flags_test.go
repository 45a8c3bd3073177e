package flags

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/agent-registry-onboarding/interfaces"
	"github.com/ruteri/agent-registry-onboarding/registry"
)

// runWith runs action inside a minimal app carrying the given flags.
func runWith(t *testing.T, flags []cli.Flag, args []string, action cli.ActionFunc) *bytes.Buffer {
	t.Helper()
	var stderr bytes.Buffer
	app := &cli.App{
		Name:      "test",
		Flags:     flags,
		Action:    action,
		Writer:    &bytes.Buffer{},
		ErrWriter: &stderr,
	}
	require.NoError(t, app.Run(append([]string{"test"}, args...)))
	return &stderr
}

func TestPositionalArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    []string
		wantErr bool
	}{
		{args: []string{"a.example", "0x01"}, want: []string{"a.example", "0x01"}},
		{args: []string{"--", "a.example", "0x01"}, want: []string{"a.example", "0x01"}},
		{args: []string{"a.example"}, wantErr: true},
		{args: []string{"a", "b", "c"}, wantErr: true},
	}

	for _, tt := range tests {
		runWith(t, nil, tt.args, func(cCtx *cli.Context) error {
			got, err := PositionalArgs(cCtx, 2)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUsage, tt.args)
				return nil
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			return nil
		})
	}
}

func TestAgentArgs(t *testing.T) {
	const agent = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	tests := map[string]struct {
		args    []string
		wantErr bool
	}{
		"valid":             {args: []string{"--", "agent.example.com", agent}},
		"without separator": {args: []string{"agent.example.com", agent}},
		"empty domain":      {args: []string{"--", "", agent}, wantErr: true},
		"blank domain":      {args: []string{"--", "   ", agent}, wantErr: true},
		"short address":     {args: []string{"--", "agent.example.com", "0x1234"}, wantErr: true},
		"unprefixed":        {args: []string{"--", "agent.example.com", agent[2:]}, wantErr: true},
		"missing address":   {args: []string{"--", "agent.example.com"}, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runWith(t, nil, tt.args, func(cCtx *cli.Context) error {
				domain, address, err := AgentArgs(cCtx)
				if tt.wantErr {
					assert.ErrorIs(t, err, ErrUsage)
					return nil
				}
				require.NoError(t, err)
				assert.Equal(t, "agent.example.com", domain)
				assert.Equal(t, agent, address)
				return nil
			})
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("ONBOARD_TEST_LOADED=from-file\nONBOARD_TEST_PRESET=from-file\n"), 0o600))

	// Registers restoration, then unset so the file value applies.
	t.Setenv("ONBOARD_TEST_LOADED", "")
	require.NoError(t, os.Unsetenv("ONBOARD_TEST_LOADED"))
	t.Setenv("ONBOARD_TEST_PRESET", "from-env")

	require.NoError(t, LoadDotEnv(file, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("ONBOARD_TEST_LOADED"))
	assert.Equal(t, "from-env", os.Getenv("ONBOARD_TEST_PRESET"))
}

func TestConnect_MissingKeyBeforeDial(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("RPC_ADDR", "")

	runWith(t, CommonFlags, []string{"--rpc-addr", "http://127.0.0.1:1"}, func(cCtx *cli.Context) error {
		network, signer, err := Connect(context.Background(), cCtx, SetupLogger(cCtx))
		assert.ErrorIs(t, err, interfaces.ErrMissingCredential)
		assert.Nil(t, network)
		assert.Nil(t, signer)
		return nil
	})
}

func TestDefaultsAndOverview(t *testing.T) {
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("PINATA_JWT", "")
	t.Setenv("IDENTITY_REGISTRY", "")

	flags := append([]cli.Flag{PinataJWTFlag, IdentityRegistryFlag, FeeFlag, ConfirmTimeoutFlag, StorageFlag}, CommonFlags...)
	args := []string{
		"--private-key", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		"--storage", " file:///tmp/evidence ", "--storage", " ",
	}

	stderr := runWith(t, flags, args, func(cCtx *cli.Context) error {
		fee, err := RegistrationFee(cCtx)
		require.NoError(t, err)
		assert.Equal(t, 0, fee.Cmp(registry.RegistrationFee()))

		assert.Equal(t, registry.DefaultConfirmTimeout, ConfirmTimeout(cCtx))
		assert.Equal(t, []string{"file:///tmp/evidence"}, TrimmedStrings(cCtx, StorageFlag.Name))

		LogEnvOverview(cCtx, SetupLogger(cCtx))
		return nil
	})

	out := stderr.String()
	assert.Contains(t, out, "PINATA_JWT=<unset>")
	assert.Contains(t, out, "IDENTITY_REGISTRY=<unset>")
	assert.NotContains(t, out, "bed5efcae784d7bf4f2ff80")
}

func TestConfirmTimeoutFlag(t *testing.T) {
	runWith(t, []cli.Flag{ConfirmTimeoutFlag}, []string{"--confirm-timeout", "5s"}, func(cCtx *cli.Context) error {
		assert.Equal(t, 5*time.Second, ConfirmTimeout(cCtx))
		return nil
	})
}

func TestExit(t *testing.T) {
	assert.NoError(t, Exit(nil, nil))
}
