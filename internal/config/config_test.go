package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-auth-client/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, "http://127.0.0.1:8000", cfg.BaseURL)
	require.Equal(t, 3*time.Hour, cfg.SessionTTL.Std())
	require.Equal(t, 5*time.Minute, cfg.CheckInterval.Std())
	require.Equal(t, 15*time.Second, cfg.RequestTimeout.Std())
	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsToUnsetFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "authctl.yaml", "base_url: https://api.example.com\nsession_ttl: 1h\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", cfg.BaseURL)
	require.Equal(t, time.Hour, cfg.SessionTTL.Std())
	require.Equal(t, 5*time.Minute, cfg.CheckInterval.Std())
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "authctl.yaml", "session_ttl: three hours\n")
	_, err := config.Load(path)
	require.ErrorContains(t, err, "invalid duration")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "authctl.yaml", "base_url: [unclosed\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestDiscoverPrecedence(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	// Nothing anywhere.
	_, found, err := config.DiscoverFrom("", cwd, home)
	require.NoError(t, err)
	require.False(t, found)

	// Home config is found when the project file is absent.
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".authctl"), 0o700))
	homePath := writeConfig(t, filepath.Join(home, ".authctl"), "config.yaml", "base_url: https://home\n")
	path, found, err := config.DiscoverFrom("", cwd, home)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, homePath, path)

	// Project file wins over home.
	projectPath := writeConfig(t, cwd, "authctl.yaml", "base_url: https://project\n")
	path, found, err = config.DiscoverFrom("", cwd, home)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, projectPath, path)

	// Explicit path wins over both, and must exist.
	explicitPath := writeConfig(t, t.TempDir(), "custom.yaml", "base_url: https://explicit\n")
	path, found, err = config.DiscoverFrom(explicitPath, cwd, home)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, explicitPath, path)

	_, _, err = config.DiscoverFrom(filepath.Join(cwd, "missing.yaml"), cwd, home)
	require.ErrorContains(t, err, "not found")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.BaseURL = ""
	require.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.SessionTTL = 0
	require.Error(t, cfg.Validate())
}
