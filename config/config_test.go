package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/warden/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.StorePath)
	assert.Equal(t, 60, cfg.StalenessMinutes)
	assert.Equal(t, 15, cfg.PollIntervalSeconds)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warden.yml")
	content := `store_path: /tmp/warden/sessions.json
staleness_minutes: 120
extensions:
  logging:
    level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/warden/sessions.json", cfg.StorePath)
	assert.Equal(t, 120, cfg.StalenessMinutes)

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)

	// Absent extensions are a no-op.
	var other struct {
		X string `yaml:"x"`
	}
	require.NoError(t, cfg.UnmarshalExtension("nope", &other))
	assert.Empty(t, other.X)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WARDEN_STORE_PATH", "/override/sessions.json")
	t.Setenv("WARDEN_STALENESS_MINUTES", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "/override/sessions.json", cfg.StorePath)
	assert.Equal(t, 5, cfg.StalenessMinutes)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.yml")
	require.NoError(t, os.WriteFile(path, []byte("store_path: [broken"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}
