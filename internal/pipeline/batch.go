package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/extraction-bench/internal/common"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
	"github.com/joseph-ayodele/extraction-bench/internal/extract"
	"github.com/joseph-ayodele/extraction-bench/internal/repository"
)

const defaultConcurrency = 4

// Runner fans documents x backends across a bounded worker pool.
type Runner struct {
	Logger      *slog.Logger
	Processor   *Processor
	Backends    []extract.Backend
	Runs        repository.RunRepository // optional
	Concurrency int
	now         func() time.Time
}

func NewRunner(logger *slog.Logger, p *Processor, backends []extract.Backend, runs repository.RunRepository, concurrency int) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Runner{
		Logger:      logger,
		Processor:   p,
		Backends:    backends,
		Runs:        runs,
		Concurrency: concurrency,
		now:         time.Now,
	}
}

// Run processes every document with every backend. Results are ordered by document,
// then by backend. The returned error is non-nil only when ctx was cancelled or there
// is nothing to run with; per-document failures are FAILED rows.
func (r *Runner) Run(ctx context.Context, docs []entity.Document) (entity.BatchResult, error) {
	if len(r.Backends) == 0 {
		return entity.BatchResult{}, common.NewAppError(common.CodeConfig, "no extraction backends configured", common.ErrInvalidInput)
	}

	runID := uuid.New()
	started := r.now().UTC()
	ctx = common.WithRunID(ctx, runID.String())
	log := common.LoggerFromContext(ctx, r.Logger)

	log.Info("pipeline.batch.start", "documents", len(docs), "backends", len(r.Backends), "concurrency", r.Concurrency)
	if r.Runs != nil {
		if err := r.Runs.Start(ctx, runID, started, len(docs)); err != nil {
			log.Error("pipeline.run.start_failed", "error", err)
		}
	}

	slots := make([]entity.ExtractionResult, len(docs)*len(r.Backends))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)

	for i, doc := range docs {
		for j, b := range r.Backends {
			idx := i*len(r.Backends) + j
			doc, b := doc, b
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				slots[idx] = r.Processor.Process(gctx, runID, doc, b)
				return nil
			})
		}
	}
	err := g.Wait()

	out := entity.BatchResult{
		RunID:      runID.String(),
		StartedAt:  started,
		FinishedAt: r.now().UTC(),
		Results:    slots,
		Summary:    Summarize(slots, r.Backends),
	}

	failures := 0
	for _, s := range out.Summary {
		failures += s.Failed
	}
	if r.Runs != nil {
		// finish even when cancelled so the run row is closed
		if ferr := r.Runs.Finish(context.WithoutCancel(ctx), runID, out.FinishedAt, failures); ferr != nil {
			log.Error("pipeline.run.finish_failed", "error", ferr)
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn("pipeline.batch.cancelled", "error", err)
		}
		return out, err
	}
	log.Info("pipeline.batch.done",
		"failures", failures,
		"elapsed_ms", out.FinishedAt.Sub(started).Milliseconds(),
	)
	return out, nil
}

// Summarize counts outcomes per backend, in backend order.
func Summarize(results []entity.ExtractionResult, backends []extract.Backend) []entity.MethodSummary {
	sums := make([]entity.MethodSummary, len(backends))
	index := make(map[string]int, len(backends))
	for i, b := range backends {
		sums[i].Method = b.Method()
		index[string(b.Method())] = i
	}
	for _, res := range results {
		i, ok := index[string(res.ExtractionMethod)]
		if !ok {
			continue // unfilled slot after cancellation
		}
		s := &sums[i]
		s.Documents++
		switch {
		case res.Failed():
			s.Failed++
		case res.Validation != nil && res.Validation.IsValid:
			s.Valid++
		default:
			s.Invalid++
		}
	}
	return sums
}
