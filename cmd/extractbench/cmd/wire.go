package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/extract"
	"github.com/joseph-ayodele/extraction-bench/internal/extract/pattern"
	"github.com/joseph-ayodele/extraction-bench/internal/llm"
	"github.com/joseph-ayodele/extraction-bench/internal/llm/anthropic"
	"github.com/joseph-ayodele/extraction-bench/internal/llm/mock"
	"github.com/joseph-ayodele/extraction-bench/internal/llm/openai"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
)

// openStore returns nil when no DSN is configured.
func openStore(ctx context.Context, c *common.Config, log *slog.Logger) (*repository.DB, error) {
	if c.Database.DSN == "" {
		return nil, nil
	}
	return repository.Open(ctx, repository.Config{
		Driver: c.Database.Driver,
		DSN:    c.Database.DSN,
	}, log)
}

func newCompleter(c common.LLMConfig, log *slog.Logger) (llm.Completer, error) {
	switch c.Provider {
	case common.ProviderMock:
		return mock.New(), nil
	case common.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:       c.OpenAIAPIKey,
			BaseURL:      c.OpenAIBaseURL,
			Model:        c.Model,
			Temperature:  c.Temperature,
			MaxTokens:    c.MaxTokens,
			Timeout:      c.Timeout,
			MaxRetries:   c.MaxRetries,
			RetryWait:    c.RetryWait,
			RetryMaxWait: c.RetryMaxWait,
		}, log), nil
	case common.ProviderAnthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      c.AnthropicAPIKey,
			Model:       c.Model,
			Temperature: float64(c.Temperature),
			MaxTokens:   int64(c.MaxTokens),
			Timeout:     c.Timeout,
			MaxRetries:  c.MaxRetries,
		}, log), nil
	}
	return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown llm provider %q", c.Provider), common.ErrInvalidInput)
}

// buildBackends returns the configured backends in the order named.
func buildBackends(c *common.Config, db *repository.DB, log *slog.Logger) ([]extract.Backend, error) {
	var out []extract.Backend
	for _, name := range c.Pipeline.Backends {
		switch constants.Method(strings.ToLower(strings.TrimSpace(name))) {
		case constants.MethodPattern:
			out = append(out, pattern.New(log))
		case constants.MethodModel:
			completer, err := newCompleter(c.LLM, log)
			if err != nil {
				return nil, err
			}
			opts := llm.Options{MaxInputChars: c.LLM.MaxInputChars}
			if c.LLM.Cache && db != nil {
				opts.Cache = repository.NewModelCacheRepository(db, log)
			}
			out = append(out, llm.NewBackend(completer, opts, log))
		default:
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown backend %q", name), common.ErrInvalidInput)
		}
	}
	if len(out) == 0 {
		return nil, common.NewAppError(common.CodeConfig, "no backends configured", common.ErrInvalidInput)
	}
	return out, nil
}
