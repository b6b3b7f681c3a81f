package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "2099", cfg.Ledger.ResultAccount)
	assert.True(t, cfg.Ledger.SeedBAS)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bokforing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
company:
  name: "Exempelbolaget AB"
  org_number: "556000-0000"
ledger:
  result_account: "2098"
`), 0o644))

	t.Setenv("ADDR", ":7070")
	t.Setenv("SEED_BAS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr, "env wins over file")
	assert.Equal(t, "Exempelbolaget AB", cfg.Company.Name)
	assert.Equal(t, "2098", cfg.Ledger.ResultAccount)
	assert.False(t, cfg.Ledger.SeedBAS)
}
