package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "LLM_PROVIDER", "LLM_MODEL", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"LLM_TIMEOUT", "LLM_MAX_RETRIES", "LLM_CACHE", "USE_MOCK", "DB_DRIVER", "DB_URL",
		"PIPELINE_CONCURRENCY", "DAY_FIRST", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), *cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: OpenAI
  model: gpt-test
  timeout: 30s
database:
  driver: sqlite
  dsn: "file:bench.db"
pipeline:
  concurrency: 8
  backends: [model]
`), 0o644))

	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PIPELINE_CONCURRENCY", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	require.Equal(t, "gpt-test", cfg.LLM.Model)
	require.Equal(t, "sk-env", cfg.LLM.OpenAIAPIKey)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 3, cfg.LLM.MaxRetries) // default filled in
	require.Equal(t, "file:bench.db", cfg.Database.DSN)
	require.Equal(t, 2, cfg.Pipeline.Concurrency)
	require.Equal(t, []string{"model"}, cfg.Pipeline.Backends)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, CodeConfig, appErr.Code)
}

func TestUseMockOverridesProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("USE_MOCK", "true")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	require.Equal(t, ProviderMock, cfg.LLM.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"openai without key", func(c *Config) { c.LLM.Provider = ProviderOpenAI }, false},
		{"anthropic with key", func(c *Config) {
			c.LLM.Provider = ProviderAnthropic
			c.LLM.AnthropicAPIKey = "k"
		}, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "bard" }, false},
		{"unknown driver", func(c *Config) {
			c.Database.DSN = "x"
			c.Database.Driver = "mysql"
		}, false},
		{"zero concurrency", func(c *Config) { c.Pipeline.Concurrency = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	require.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	require.Equal(t, slog.LevelInfo, LogConfig{Level: "loud"}.SlogLevel())
}
