package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackup-sh/stackup/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "docker-compose.yml", cfg.Paths.ComposeFile)
	assert.Equal(t, ".env", cfg.Paths.EnvFile)
	assert.Equal(t, 3737, cfg.Services.UIPort)
	assert.Equal(t, 8181, cfg.Services.APIPort)
	assert.Equal(t, 8051, cfg.Services.MCPPort)
	assert.Equal(t, 30, cfg.Poll.MaxAttempts)
	assert.NotEmpty(t, cfg.Remote.Files)
}

func TestValidate(t *testing.T) {
	t.Run("invalid port", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Services.UIPort = 0
		assert.ErrorContains(t, cfg.Validate(), "ui_port: invalid port 0")
	})

	t.Run("invalid base url scheme", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Remote.BaseURL = "ftp://example.com/files"
		assert.ErrorContains(t, cfg.Validate(), `base_url: unsupported scheme "ftp"`)
	})

	t.Run("empty compose file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Paths.ComposeFile = ""
		assert.ErrorContains(t, cfg.Validate(), "compose_file cannot be empty")
	})

	t.Run("zero poll attempts", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Poll.MaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "max_attempts: must be at least 1")
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Logging.Level = "loud"
		assert.ErrorContains(t, cfg.Validate(), "invalid log level")
	})
}

func TestLoadSources(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		cfg, err := config.LoadSources()
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig(), cfg)
	})

	t.Run("struct source overrides defaults", func(t *testing.T) {
		override := config.Config{}
		override.Services.APIPort = 9999

		source, err := config.NewStructSource(override)
		require.NoError(t, err)

		cfg, err := config.LoadSources(source)
		require.NoError(t, err)
		assert.Equal(t, 9999, cfg.Services.APIPort)
		// Untouched values keep their defaults.
		assert.Equal(t, 3737, cfg.Services.UIPort)
	})

	t.Run("env vars override struct source", func(t *testing.T) {
		t.Setenv("STACKUP_SERVICES__API_PORT", "7070")

		override := config.Config{}
		override.Services.APIPort = 9999

		source, err := config.NewStructSource(override)
		require.NoError(t, err)

		cfg, err := config.LoadSources(source, config.NewEnvVarSource())
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Services.APIPort)
	})

	t.Run("env vars override json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		raw := []byte(`{"services": {"api_port": 5050, "ui_port": 4040}}`)
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		t.Setenv("STACKUP_SERVICES__API_PORT", "7070")

		cfg, err := config.LoadSources(config.NewJsonFileSource(path), config.NewEnvVarSource())
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Services.APIPort)
		// File values not shadowed by the environment survive.
		assert.Equal(t, 4040, cfg.Services.UIPort)
	})

	t.Run("flags override env vars", func(t *testing.T) {
		t.Setenv("STACKUP_SERVICES__API_PORT", "7070")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("services.api-port", 0, "")
		require.NoError(t, flags.Set("services.api-port", "6060"))

		cfg, err := config.LoadSources(config.NewEnvVarSource(), config.NewPFlagSource(flags))
		require.NoError(t, err)
		assert.Equal(t, 6060, cfg.Services.APIPort)
	})

	t.Run("invalid merged config fails", func(t *testing.T) {
		t.Setenv("STACKUP_POLL__MAX_ATTEMPTS", "-1")

		_, err := config.LoadSources(config.NewEnvVarSource())
		assert.ErrorContains(t, err, "max_attempts")
	})
}
