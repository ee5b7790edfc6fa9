package worker

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/research"
)

// Researcher runs one subject to completion. Satisfied by
// research.Orchestrator.
type Researcher interface {
	Research(ctx context.Context, subject model.Subject) (*research.RunResult, error)
}

// ResearchJob researches one subject on a pool worker.
type ResearchJob struct {
	Index      int
	Subject    model.Subject
	Researcher Researcher
}

// BatchResult is the outcome of one subject's research job. A failed run
// carries its error here; other subjects in the batch are unaffected.
type BatchResult struct {
	Index   int
	Subject model.Subject
	Run     *research.RunResult
	Err     error
}

// GetError implements Result.
func (r *BatchResult) GetError() error { return r.Err }

// Execute implements Job.
func (j *ResearchJob) Execute(ctx context.Context) Result {
	run, err := j.Researcher.Research(ctx, j.Subject)
	return &BatchResult{
		Index:   j.Index,
		Subject: j.Subject,
		Run:     run,
		Err:     err,
	}
}

// BatchProcessor fans subjects out over a worker pool. One orchestrator is
// shared across workers; each run builds its own store and ledger, so the
// only cross-subject coupling is the shared rate limiter inside the fetcher.
type BatchProcessor struct {
	researcher  Researcher
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a processor with the given worker count.
func NewBatchProcessor(researcher Researcher, concurrency int, logger *zap.Logger) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		researcher:  researcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process researches every subject and returns results in input order.
// A subject's failure is recorded in its result, never propagated to the
// rest of the batch.
func (b *BatchProcessor) Process(ctx context.Context, subjects []model.Subject) []*BatchResult {
	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		for i, subject := range subjects {
			select {
			case <-ctx.Done():
				pool.Close()
				return
			default:
			}
			pool.Submit(&ResearchJob{
				Index:      i,
				Subject:    subject,
				Researcher: b.researcher,
			})
		}
		pool.Close()
	}()

	results := make([]*BatchResult, 0, len(subjects))
	for r := range pool.Results() {
		br := r.(*BatchResult)
		if br.Err != nil {
			b.logger.Warn("subject failed",
				zap.String("subject", br.Subject.DisplayName()),
				zap.Error(br.Err))
		} else {
			b.logger.Info("subject finished",
				zap.String("subject", br.Subject.DisplayName()),
				zap.Int("iterations", len(br.Run.Iterations)))
		}
		results = append(results, br)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}
