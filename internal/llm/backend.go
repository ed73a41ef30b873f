package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

var tracer = otel.Tracer("extraction-bench/llm")

// Options configures the model backend.
type Options struct {
	MaxInputChars int
	// Cache is optional; nil disables response caching.
	Cache Cache
}

// Backend is the model-based extraction backend. Mock and live models go through the
// same prompt and parse path, so both fail with the same ExtractionError.
type Backend struct {
	completer Completer
	opts      Options
	log       *slog.Logger
}

func NewBackend(completer Completer, opts Options, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = defaultMaxInputChars
	}
	return &Backend{completer: completer, opts: opts, log: logger}
}

func (b *Backend) Method() constants.Method { return constants.MethodModel }

func (b *Backend) ModelName() string { return b.completer.Model() }

// CacheKey identifies a model response by the model and everything it was shown: the
// prompt version, the type hint and both prompts (so the truncation limit counts too).
func CacheKey(model string, req CompletionRequest) string {
	h := sha256.New()
	for _, part := range []string{model, PromptVersion, req.TypeHint, req.System, req.User} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (b *Backend) request(doc entity.Document) CompletionRequest {
	return CompletionRequest{
		System:     BuildSystemPrompt(),
		User:       BuildUserPrompt(doc, b.opts.MaxInputChars),
		DocumentID: doc.ID,
		TypeHint:   doc.TypeHint,
	}
}

func (b *Backend) Extract(ctx context.Context, doc entity.Document) (entity.RawExtraction, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := common.LoggerFromContext(ctx, b.log).With("req_id", rid)
	model := b.completer.Model()

	ctx, span := tracer.Start(ctx, "llm.extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("doc", doc.ID),
		attribute.String("model", model),
	)

	log.Info("llm.extract.start",
		"model", model,
		"text_len", len(doc.Text),
		"type_hint", doc.TypeHint,
	)

	req := b.request(doc)
	key := CacheKey(model, req)
	content, cached, err := b.complete(ctx, log, req, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		log.Error("llm.extract.completion_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.RawExtraction{}, common.NewExtractionError("model completion failed", err)
	}

	fields, err := ParseResponse(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		log.Error("llm.extract.decode_error", "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.RawExtraction{}, common.NewExtractionError("model returned malformed output", err)
	}
	if err := ValidateResponse(fields); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema validation failed")
		log.Error("llm.extract.schema_validation_failed", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.RawExtraction{}, common.NewExtractionError("model output does not match the response schema", err)
	}
	if changed := SanitizeFields(fields); len(changed) > 0 {
		log.Warn("llm.extract.sanitize_applied", "changed", changed)
	}

	var confidence *float64
	if v, ok := fields["confidence"]; ok {
		if n, ok := v.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				confidence = &f
			}
		}
		delete(fields, "confidence")
	}

	if !cached {
		b.storeCache(ctx, log, key, model, content)
	}

	log.Info("llm.extract.ok",
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.RawExtraction{
		DocumentID: doc.ID,
		Fields:     fields,
		Metadata: entity.RawMetadata{
			Method:     constants.MethodModel,
			Model:      model,
			Confidence: confidence,
		},
	}, nil
}

// complete returns the cached response under key when there is one, otherwise asks the model.
func (b *Backend) complete(ctx context.Context, log *slog.Logger, req CompletionRequest, key string) (string, bool, error) {
	if b.opts.Cache != nil {
		span := trace.SpanFromContext(ctx)
		cached, ok, err := b.opts.Cache.Get(ctx, key)
		if err != nil {
			// a broken cache must not fail the extraction
			log.Warn("llm.cache.get_error", "error", err)
		} else if ok {
			log.Debug("llm.cache.hit")
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, true, nil
		}
	}

	resp, err := b.completer.Complete(ctx, req)
	if err != nil {
		return "", false, err
	}
	log.Debug("llm.completion.ok",
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"bytes", len(resp.Content),
	)
	return resp.Content, false, nil
}

// storeCache writes only responses that parsed, so a malformed answer is retried next run.
func (b *Backend) storeCache(ctx context.Context, log *slog.Logger, key, model, content string) {
	if b.opts.Cache == nil {
		return
	}
	if err := b.opts.Cache.Put(ctx, key, model, content); err != nil {
		log.Warn("llm.cache.put_error", "error", err)
	}
}
