package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/extract"
	"github.com/joseph-ayodele/extraction-bench/internal/normalize"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
	"github.com/joseph-ayodele/extraction-bench/internal/validate"
)

var tracer = otel.Tracer("extraction-bench/pipeline")

// Processor runs one document through extract -> normalize -> validate.
type Processor struct {
	Logger     *slog.Logger
	Normalizer *normalize.Normalizer
	Jobs       repository.ExtractJobRepository // optional; nil skips bookkeeping
	now        func() time.Time
}

func NewProcessor(logger *slog.Logger, n *normalize.Normalizer, jobs repository.ExtractJobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = normalize.NewNormalizer(normalize.Options{})
	}
	return &Processor{Logger: logger, Normalizer: n, Jobs: jobs, now: time.Now}
}

// Process never returns an error: an extraction failure becomes a FAILED result row.
func (p *Processor) Process(ctx context.Context, runID uuid.UUID, doc entity.Document, b extract.Backend) entity.ExtractionResult {
	method := b.Method()
	model := extract.ModelOf(b)

	ctx = common.WithDocumentID(ctx, doc.ID)
	log := common.LoggerFromContext(ctx, p.Logger).With("method", method)

	ctx, span := tracer.Start(ctx, "pipeline.document")
	defer span.End()
	span.SetAttributes(
		attribute.String("doc", doc.ID),
		attribute.String("method", string(method)),
	)

	res := entity.ExtractionResult{
		SourceDocument:   doc.ID,
		ExtractionMethod: method,
		Model:            model,
	}

	jobID := p.startJob(ctx, log, runID, doc, method, model)

	start := p.now()
	raw, err := b.Extract(ctx, doc)
	res.ExtractedAt = p.now().UTC()
	if err != nil {
		res.Status = constants.JobStatusFailed
		res.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		log.Warn("pipeline.document.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		p.finishFailure(ctx, log, jobID, res.Error)
		return res
	}
	if raw.DocumentID == "" {
		raw.DocumentID = doc.ID
	}
	raw.Metadata.Method = method

	rec, notes := p.Normalizer.NormalizeWithNotes(raw)
	v := validate.Validate(rec)

	res.Status = constants.JobStatusOK
	res.Confidence = raw.Metadata.Confidence
	if raw.Metadata.Model != "" {
		res.Model = raw.Metadata.Model
	}
	res.Record = &rec
	res.Validation = &v
	res.Notes = notes

	span.SetAttributes(attribute.Bool("valid", v.IsValid), attribute.Int("errors", len(v.Errors)))
	log.Info("pipeline.document.ok",
		"valid", v.IsValid,
		"errors", len(v.Errors),
		"notes", len(notes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	p.finishSuccess(ctx, log, jobID, rec, v)
	return res
}

func (p *Processor) startJob(ctx context.Context, log *slog.Logger, runID uuid.UUID, doc entity.Document, method constants.Method, model string) uuid.UUID {
	if p.Jobs == nil {
		return uuid.Nil
	}
	id, err := p.Jobs.Start(ctx, repository.StartJobRequest{
		RunID:       runID,
		DocumentID:  doc.ID,
		ContentHash: doc.ContentHash,
		Method:      method,
		Model:       model,
	})
	if err != nil {
		log.Error("pipeline.job.start_failed", "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Processor) finishSuccess(ctx context.Context, log *slog.Logger, jobID uuid.UUID, rec entity.NormalizedRecord, v entity.ValidationResult) {
	if p.Jobs == nil || jobID == uuid.Nil {
		return
	}
	if err := p.Jobs.FinishSuccess(ctx, jobID, rec, v); err != nil {
		log.Error("pipeline.job.finish_failed", "job_id", jobID, "error", err)
	}
}

func (p *Processor) finishFailure(ctx context.Context, log *slog.Logger, jobID uuid.UUID, msg string) {
	if p.Jobs == nil || jobID == uuid.Nil {
		return
	}
	if err := p.Jobs.FinishFailure(ctx, jobID, msg); err != nil {
		log.Error("pipeline.job.finish_failed", "job_id", jobID, "error", err)
	}
}
