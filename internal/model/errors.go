package model

import "errors"

// Sentinel errors for the research engine. Callers match with errors.Is;
// sites that produce them wrap with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrInvalidInput marks malformed fact input (empty source URL, contact
	// with neither name nor email). Rejected at admission, never fatal.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a transport or timeout failure talking to
	// the inference provider. Retried with backoff up to a budget.
	ErrProviderUnavailable = errors.New("inference provider unavailable")

	// ErrMalformedDecision marks a provider response that could not be parsed
	// into a Decision. Treated as an empty continue decision for the iteration.
	ErrMalformedDecision = errors.New("malformed decision")

	// ErrFetch marks a content fetch failure. The URL is still recorded as
	// explored so a dead link is never retried.
	ErrFetch = errors.New("fetch failed")
)
