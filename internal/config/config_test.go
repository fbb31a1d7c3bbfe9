package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":8090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8090", cfg.Server.Addr)
	require.Equal(t, 5, cfg.Catalog.TTLMinutes)
	require.Equal(t, 10, cfg.Poller.IntervalSeconds)
	require.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadRequiresServerAddr(t *testing.T) {
	path := writeConfig(t, "logger:\n  level: debug\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":8090\"\nprovider:\n  base_url: \"https://file.example\"\n")

	t.Setenv("FOXPAYS_BASE_URL", "https://env.example")
	t.Setenv("FOXPAYS_ACCESS_TOKEN", "env-token")
	t.Setenv("CATALOG_TTL_MINUTES", "7")
	t.Setenv("POLL_INTERVAL_SECONDS", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.Provider.BaseURL)
	require.Equal(t, "env-token", cfg.Provider.AccessToken)
	require.Equal(t, 7, cfg.Catalog.TTLMinutes)
	require.Equal(t, 10, cfg.Poller.IntervalSeconds, "bad numeric env falls back to default")
}
