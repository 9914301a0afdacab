package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default().Host, cfg.Host)
	require.Equal(t, uint16(9000), cfg.Port)
}

func TestLoadWithMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)
	require.Equal(t, Default().ServerName, cfg.ServerName)
}

func TestLoadReadsJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":"0.0.0.0","port":9123}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, uint16(9123), cfg.Port)
	// untouched fields keep their default
	require.True(t, cfg.ExtrasEnabled)
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	big := make([]byte, maxConfigFileSize+1)
	require.NoError(t, os.WriteFile(path, big, 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvKeyToPath(t *testing.T) {
	require.Equal(t, "auth.enabled", envKeyToPath("AUTH_ENABLED"))
	require.Equal(t, "host", envKeyToPath("HOST"))
}

func TestLoadAppliesNexusPrefixedEnvOverrides(t *testing.T) {
	// auth.enabled requires at least one key to pass Validate, so the file
	// supplies one and the environment flips the flag.
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"auth":{"api_keys":["test-key"]}}`), 0o600))
	t.Setenv("NEXUS_HOST", "10.0.0.5")
	t.Setenv("NEXUS_AUTH_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", cfg.Host)
	require.True(t, cfg.Auth.Enabled)
}

func TestLoadEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host":"0.0.0.0"}`), 0o600))
	t.Setenv("NEXUS_HOST", "192.168.1.1")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "192.168.1.1", cfg.Host)
}
