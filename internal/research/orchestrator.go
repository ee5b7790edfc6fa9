// Package research drives the iterative research loop for one subject: ask
// the decision engine what to do, execute its actions through the action
// registry, explore requested sources, and stop on completion, fixed point,
// budget exhaustion, or abort.
package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/cite"
	"github.com/mkarel/prospect/internal/fetch"
	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/registry"
	"github.com/mkarel/prospect/internal/store"
)

// State is one phase of the research state machine.
type State string

const (
	StateInit             State = "init"
	StateAnalyze          State = "analyze"
	StateApplyActions     State = "apply_actions"
	StateExplore          State = "explore"
	StateCheckTermination State = "check_termination"
	StateDone             State = "done"
	StateAborted          State = "aborted"
)

// Decider is the decision engine as the orchestrator sees it.
type Decider interface {
	Decide(ctx context.Context, subject model.Subject, snap store.Snapshot) (model.Decision, error)
}

// Config bounds one research run.
type Config struct {
	MaxIterations int           // iteration budget, never unbounded
	RetryBudget   int           // provider retries after the first attempt
	RetryBackoff  time.Duration // base backoff, doubled per retry
	PageTextLimit int           // bytes of page text kept per source
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 10
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.PageTextLimit <= 0 {
		c.PageTextLimit = 10 * 1024
	}
	return c
}

// Orchestrator runs research over subjects. Safe for concurrent use: all
// per-run state lives in the run, created per Research call.
type Orchestrator struct {
	engine  Decider
	fetcher fetch.Fetcher
	images  *ImageStore // nil records image facts without downloading
	config  Config
	logger  *zap.Logger
}

// New creates an orchestrator.
func New(engine Decider, fetcher fetch.Fetcher, images *ImageStore, config Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		engine:  engine,
		fetcher: fetcher,
		images:  images,
		config:  config.withDefaults(),
		logger:  logger,
	}
}

// RunResult is the final output of one research run. Both terminal states
// carry the full store and iteration history; Err is set only for
// StateAborted.
type RunResult struct {
	RunID          string
	Subject        model.Subject
	State          State
	Knowledge      *store.Knowledge
	Ledger         *cite.Ledger
	Iterations     []model.IterationRecord
	MissingActions map[string]registry.MissingAction
	StartedAt      time.Time
	FinishedAt     time.Time
	Err            error
}

// Research runs the state machine for one subject until a terminal state.
// The returned result is always non-nil and holds everything committed
// before any failure; the error mirrors result.Err for aborted runs.
func (o *Orchestrator) Research(ctx context.Context, subject model.Subject) (*RunResult, error) {
	r := newRun(ctx, o, subject)
	logger := o.logger.With(
		zap.String("run_id", r.id),
		zap.String("subject", subject.DisplayName()))
	logger.Info("research started", zap.Int("max_iterations", o.config.MaxIterations))

	var (
		state    = StateInit
		decision model.Decision
		abortErr error
	)

	for state != StateDone && state != StateAborted {
		switch state {
		case StateInit:
			r.seedBaseline()
			state = StateAnalyze

		case StateAnalyze:
			// Cancellation is checked between iterations so a stopped batch
			// still returns everything committed so far.
			if err := ctx.Err(); err != nil {
				abortErr = err
				state = StateAborted
				continue
			}

			r.beginIteration()
			logger.Info("iteration", zap.Int("index", r.rec.Index))

			d, err := o.decideWithRetry(ctx, r, logger)
			switch {
			case err == nil:
				decision = d
				r.malformed = false
			case errors.Is(err, model.ErrMalformedDecision):
				// No-op continuation: still consumes an iteration, so a
				// persistently malformed model runs out of budget.
				logger.Warn("malformed decision, continuing with empty iteration", zap.Error(err))
				r.rec.Errors = append(r.rec.Errors, err.Error())
				decision = model.Decision{Status: model.StatusContinue}
				r.malformed = true
			default:
				abortErr = err
				state = StateAborted
				continue
			}

			r.rec.RelevantData = decision.RelevantData
			state = StateApplyActions

		case StateApplyActions:
			for _, action := range decision.Actions {
				r.recordOutcome(r.registry.Dispatch(action.Name, action.Params))
			}
			state = StateExplore

		case StateExplore:
			for _, step := range decision.NextSteps {
				r.recordOutcome(r.registry.Dispatch(step.Name, step.Params))
			}
			state = StateCheckTermination

		case StateCheckTermination:
			r.endIteration()
			switch {
			case decision.Status == model.StatusComplete:
				logger.Info("engine declared research complete", zap.Int("iterations", len(r.iterations)))
				state = StateDone
			case len(r.iterations) >= o.config.MaxIterations:
				logger.Info("iteration budget exhausted", zap.Int("iterations", len(r.iterations)))
				state = StateDone
			case decision.Empty() && !r.malformed:
				logger.Info("fixed point reached, nothing left to do")
				state = StateDone
			default:
				state = StateAnalyze
			}
		}
	}

	if state == StateAborted {
		r.abortIteration(abortErr)
		logger.Error("research aborted", zap.Error(abortErr))
	}

	result := r.result(state, abortErr)
	logger.Info("research finished",
		zap.String("state", string(state)),
		zap.Any("summary", r.store.Summary()))
	if abortErr != nil {
		return result, fmt.Errorf("research %s: %w", subject.DisplayName(), abortErr)
	}
	return result, nil
}

// decideWithRetry calls the engine, retrying provider outages with doubling
// backoff up to the budget. Malformed decisions are never retried; the reply
// arrived, it was just garbage.
func (o *Orchestrator) decideWithRetry(ctx context.Context, r *run, logger *zap.Logger) (model.Decision, error) {
	backoff := o.config.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= o.config.RetryBudget; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying provider",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return model.Decision{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		decision, err := o.engine.Decide(ctx, r.subject, r.store.Snapshot())
		if err == nil {
			return decision, nil
		}
		if errors.Is(err, model.ErrMalformedDecision) {
			return model.Decision{}, err
		}
		lastErr = err
	}
	return model.Decision{}, lastErr
}

func newRunID() string {
	return uuid.NewString()
}
