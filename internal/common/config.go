package common

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Model providers
const (
	ProviderMock      = "mock"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Database DatabaseConfig `yaml:"database"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// LLMConfig holds model-backend configuration
type LLMConfig struct {
	Provider        string        `yaml:"provider"` // mock | openai | anthropic
	Model           string        `yaml:"model"`
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	Temperature     float32       `yaml:"temperature"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryWait       time.Duration `yaml:"retry_wait"`
	RetryMaxWait    time.Duration `yaml:"retry_max_wait"`
	MaxInputChars   int           `yaml:"max_input_chars"`
	Cache           bool          `yaml:"cache"`
}

// DatabaseConfig holds the optional result/cache store configuration
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite | pgx
	DSN    string `yaml:"dsn"`    // empty disables the store
}

// PipelineConfig holds batch-runner configuration
type PipelineConfig struct {
	Concurrency int      `yaml:"concurrency"`
	DayFirst    bool     `yaml:"day_first"`
	Backends    []string `yaml:"backends"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:      ProviderMock,
			OpenAIBaseURL: "https://api.openai.com/v1",
			Temperature:   0.1,
			MaxTokens:     1000,
			Timeout:       45 * time.Second,
			MaxRetries:    3,
			RetryWait:     time.Second,
			RetryMaxWait:  8 * time.Second,
			MaxInputChars: 6000,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Pipeline: PipelineConfig{
			Concurrency: 4,
			Backends:    []string{"pattern", "model"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig builds the configuration from, in increasing priority: defaults, the YAML
// file at path (CONFIG_PATH or "config.yaml" when path is empty; a missing file is fine),
// a .env file in the working directory, and environment variables.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = getEnv("CONFIG_PATH", "config.yaml")
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("parse %s", path), err)
		}
		slog.Debug("config.file.loaded", "path", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, NewAppError(CodeConfig, fmt.Sprintf("read %s", path), err)
	}

	// .env never overrides variables that are already exported
	if err := godotenv.Load(); err == nil {
		slog.Debug("config.dotenv.loaded")
	}

	applyEnv(&cfg)

	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return nil, NewAppError(CodeConfig, "merge defaults", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envOverride(&cfg.LLM.Provider, "LLM_PROVIDER")
	envOverride(&cfg.LLM.Model, "LLM_MODEL")
	envOverride(&cfg.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverride(&cfg.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	cfg.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", cfg.LLM.Temperature)
	cfg.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.MaxRetries = getEnvAsInt("LLM_MAX_RETRIES", cfg.LLM.MaxRetries)
	cfg.LLM.MaxInputChars = getEnvAsInt("LLM_MAX_INPUT_CHARS", cfg.LLM.MaxInputChars)
	cfg.LLM.Cache = getEnvAsBool("LLM_CACHE", cfg.LLM.Cache)
	// USE_MOCK=true forces the deterministic stand-in regardless of provider
	if getEnvAsBool("USE_MOCK", false) {
		cfg.LLM.Provider = ProviderMock
	}

	envOverride(&cfg.Database.Driver, "DB_DRIVER")
	envOverride(&cfg.Database.DSN, "DB_URL")

	cfg.Pipeline.Concurrency = getEnvAsInt("PIPELINE_CONCURRENCY", cfg.Pipeline.Concurrency)
	cfg.Pipeline.DayFirst = getEnvAsBool("DAY_FIRST", cfg.Pipeline.DayFirst)

	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.Format, "LOG_FORMAT")
}

// Helper functions for environment variable parsing
func envOverride(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderMock:
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required for provider openai", ErrInvalidInput)
		}
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			return NewAppError(CodeConfig, "ANTHROPIC_API_KEY is required for provider anthropic", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.Database.DSN != "" && c.Database.Driver != DriverSQLite && c.Database.Driver != DriverPostgres {
		return NewAppError(CodeConfig, fmt.Sprintf("unknown database driver %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Pipeline.Concurrency < 1 {
		return NewAppError(CodeConfig, "pipeline concurrency must be at least 1", ErrInvalidInput)
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level (info on unknown input).
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
