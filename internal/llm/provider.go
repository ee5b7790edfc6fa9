// Package llm abstracts the inference provider behind a small completion
// interface. Transport and auth details stay here; prompt construction and
// response parsing belong to the decision engine.
package llm

import "context"

// Provider is implemented by inference backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends one prompt and returns the raw response text.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is the input for one provider call.
type CompletionRequest struct {
	// System is the system prompt (role and output-format instructions).
	System string

	// Prompt is the user prompt.
	Prompt string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls sampling.
	Temperature float32
}

// CompletionResponse carries the provider's reply.
type CompletionResponse struct {
	// Text is the raw response text, not yet parsed.
	Text string

	// Model is the model that produced the response.
	Model string

	// TokensUsed tracks token consumption.
	TokensUsed int
}
