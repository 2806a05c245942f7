package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoiced.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.NotEmpty(t, cfg.Contract.Denom)

	// The generated file must round-trip.
	again, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, again)
}

func TestLoadAppliesFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoiced.toml")
	body := `
DataDir = "/var/lib/invoiced"

[Contract]
AdminAddress = "merchant"
Recipient = "settlement"
Denom = "usdx.c"
BusinessName = "Shoe Co"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/invoiced", cfg.DataDir)
	require.Equal(t, "127.0.0.1:8645", cfg.RPCAddress)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "Shoe Co", cfg.Contract.BusinessName)
}

func TestLoadRejectsIncompleteContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoiced.toml")
	body := `
[Contract]
AdminAddress = "merchant"
Denom = "usdx.c"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Contract.Recipient")
}
