package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/llm"
)

var tracer = otel.Tracer("extraction-bench/llm/openai")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float32        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Messages       []chatMessage  `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Model() string { return c.cfg.Model }

// Complete implements llm.Completer with the chat/completions endpoint in JSON mode.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.Completion, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := common.LoggerFromContext(ctx, c.log)

	ctx, span := tracer.Start(ctx, "openai.chat_completion")
	defer span.End()
	span.SetAttributes(attribute.String("model", c.cfg.Model))

	body := chatRequest{
		Model:          c.cfg.Model,
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: map[string]any{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	log.Info("llm.openai.request",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(req.User),
	)

	var out chatResponse
	var apiErr errorResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		log.Error("llm.openai.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Completion{}, fmt.Errorf("openai http error: %w", err)
	}
	if res.IsError() {
		msg := strings.TrimSpace(res.String())
		if apiErr.Error != nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		err := fmt.Errorf("openai status %d: %s", res.StatusCode(), msg)
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx status")
		log.Error("llm.openai.status_error", "req_id", rid, "status", res.StatusCode(),
			"attempts", res.Request.Attempt, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Completion{}, err
	}
	if len(out.Choices) == 0 {
		log.Error("llm.openai.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Completion{}, fmt.Errorf("no choices in openai response")
	}

	completion := llm.Completion{
		Content: strings.TrimSpace(out.Choices[0].Message.Content),
		Model:   out.Model,
	}
	if completion.Model == "" {
		completion.Model = c.cfg.Model
	}
	if out.Usage != nil {
		completion.InputTokens = out.Usage.PromptTokens
		completion.OutputTokens = out.Usage.CompletionTokens
	}
	log.Info("llm.openai.response",
		"req_id", rid,
		"status", res.StatusCode(),
		"attempts", res.Request.Attempt,
		"bytes", len(completion.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return completion, nil
}
