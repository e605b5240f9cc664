package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 100.0, cfg.MaxCostUSD)
	assert.Equal(t, "data/leases", cfg.Folders.Leases)
	assert.Equal(t, "data/prompts", cfg.Folders.Prompts)
	assert.Equal(t, "output", cfg.Folders.Output)
	assert.Equal(t, "exceptions", cfg.Folders.Exceptions)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "info", cfg.Observability.LogLevel)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
model: o3-mini
max_cost_usd: 25.5
folders:
  leases: /data/in
  output: /data/out
history:
  enabled: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "o3-mini", cfg.Model)
	assert.Equal(t, 25.5, cfg.MaxCostUSD)
	assert.Equal(t, "/data/in", cfg.Folders.Leases)
	assert.Equal(t, "/data/out", cfg.Folders.Output)
	assert.False(t, cfg.History.Enabled)

	// Unset fields keep their defaults.
	assert.Equal(t, "data/prompts", cfg.Folders.Prompts)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LLM_MODEL", "o3-mini")
	t.Setenv("MAX_COST", "7.25")
	t.Setenv("LEASE_FOLDER", "/tmp/leases")
	t.Setenv("RUN_HISTORY_PATH", "/tmp/runs.db")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "o3-mini", cfg.Model)
	assert.Equal(t, 7.25, cfg.MaxCostUSD)
	assert.Equal(t, "/tmp/leases", cfg.Folders.Leases)
	assert.Equal(t, "/tmp/runs.db", cfg.History.Path)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestEnvOverrideInvalidCostIgnored(t *testing.T) {
	t.Setenv("MAX_COST", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100.0, cfg.MaxCostUSD)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Model = "" }},
		{"zero budget", func(c *Config) { c.MaxCostUSD = 0 }},
		{"negative budget", func(c *Config) { c.MaxCostUSD = -5 }},
		{"no lease folder", func(c *Config) { c.Folders.Leases = "" }},
		{"no output folder", func(c *Config) { c.Folders.Output = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	key, err := DefaultConfig().APIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestAPIKeyMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := DefaultConfig().APIKey()
	assert.Error(t, err)
}

func TestEnsureFolders(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Folders = FoldersConfig{
		Leases:     filepath.Join(root, "leases"),
		Prompts:    filepath.Join(root, "prompts"),
		Output:     filepath.Join(root, "output"),
		Exceptions: filepath.Join(root, "exceptions"),
		Logs:       filepath.Join(root, "logs"),
	}

	require.NoError(t, cfg.EnsureFolders())
	for _, dir := range []string{"leases", "prompts", "output", "exceptions", "logs"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}
}
