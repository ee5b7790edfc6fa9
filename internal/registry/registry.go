// Package registry dispatches decision-engine action requests by name.
// The decision engine will suggest action names that do not exist yet;
// the registry turns those into a structured missing-action log instead
// of a failure, so one hallucinated name never aborts an iteration.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Handler executes one action with the engine-supplied parameters.
type Handler func(params map[string]any) error

// Status classifies a dispatch outcome.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // no handler registered
)

// ExecutionResult is what Dispatch returns. Err is set only for StatusFailed.
type ExecutionResult struct {
	Action string
	Status Status
	Err    error
}

// MissingAction records calls to an unregistered action name.
type MissingAction struct {
	Count         int            `json:"count"`
	ExampleParams map[string]any `json:"example_params,omitempty"`
}

// Registry maps action names to handlers. One instance per research run;
// missing-action counts are owned state, never ambient globals.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]Handler
	missing  map[string]*MissingAction
	logger   *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		missing:  make(map[string]*MissingAction),
		logger:   logger,
	}
}

// Register binds name to handler. Last registration wins, which lets tests
// override built-in handlers.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Dispatch invokes the handler for name. An unknown name is logged to the
// missing-action log and returns StatusSkipped; a handler error or panic is
// caught and returns StatusFailed. Dispatch never propagates a failure.
func (r *Registry) Dispatch(name string, params map[string]any) ExecutionResult {
	r.mu.Lock()
	h, ok := r.handlers[name]
	if !ok {
		entry := r.missing[name]
		if entry == nil {
			entry = &MissingAction{ExampleParams: params}
			r.missing[name] = entry
		}
		entry.Count++
		count := entry.Count
		r.mu.Unlock()

		r.logger.Warn("unknown action requested",
			zap.String("action", name),
			zap.Int("occurrences", count))
		return ExecutionResult{Action: name, Status: StatusSkipped}
	}
	r.mu.Unlock()

	err := r.invoke(name, h, params)
	if err != nil {
		r.logger.Warn("action handler failed",
			zap.String("action", name),
			zap.Any("params", params),
			zap.Error(err))
		return ExecutionResult{Action: name, Status: StatusFailed, Err: err}
	}
	return ExecutionResult{Action: name, Status: StatusOK}
}

func (r *Registry) invoke(name string, h Handler, params map[string]any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler %s panicked: %v", name, rec)
		}
	}()
	return h(params)
}

// Missing returns a copy of the missing-action log.
func (r *Registry) Missing() map[string]MissingAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]MissingAction, len(r.missing))
	for name, entry := range r.missing {
		out[name] = *entry
	}
	return out
}

// Registered returns the sorted list of registered action names.
func (r *Registry) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
