// Package engine turns the knowledge store into a prompt, consults the
// inference provider, and parses the reply into a Decision.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/llm"
	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/store"
)

// Limiter gates provider calls. The worker limiter satisfies this; a nil
// limiter disables gating.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// rateKey is the pseudo-URL under which provider calls share the process-wide
// limiter with fetches.
const rateKey = "llm://provider"

// Engine is the decision engine. Stateless between calls; all research state
// lives in the store snapshot it receives.
type Engine struct {
	provider llm.Provider
	limiter  Limiter
	logger   *zap.Logger
	config   model.LLMConfig
}

// New creates a decision engine on top of provider.
func New(provider llm.Provider, config model.LLMConfig, limiter Limiter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		provider: provider,
		limiter:  limiter,
		logger:   logger,
		config:   config,
	}
}

// Decide performs one analysis pass: build the prompt from the snapshot,
// call the provider once, parse the structured decision.
//
// Transport failures come back wrapped in model.ErrProviderUnavailable;
// unparseable replies in model.ErrMalformedDecision. Retry policy belongs
// to the caller.
func (e *Engine) Decide(ctx context.Context, subject model.Subject, snap store.Snapshot) (model.Decision, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, rateKey); err != nil {
			return model.Decision{}, fmt.Errorf("rate limit wait: %w: %w", model.ErrProviderUnavailable, err)
		}
	}

	prompt, err := buildUserPrompt(subject, snap)
	if err != nil {
		return model.Decision{}, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	})
	if err != nil {
		return model.Decision{}, fmt.Errorf("%w: %w", model.ErrProviderUnavailable, err)
	}

	e.logger.Debug("provider responded",
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed))

	decision, err := ParseDecision(resp.Text)
	if err != nil {
		return model.Decision{}, err
	}

	if decision.Status != model.StatusContinue && decision.Status != model.StatusComplete {
		e.logger.Warn("unexpected decision status, treating as continue",
			zap.String("status", string(decision.Status)))
		decision.Status = model.StatusContinue
	}

	return decision, nil
}
