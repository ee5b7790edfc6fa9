package model

import "time"

// Status is the engine's completion flag for one iteration.
type Status string

const (
	StatusContinue Status = "continue"
	StatusComplete Status = "complete"
)

// Action is one request from the decision engine: an immediate recording call
// (actions) or an exploration of new content (next_steps).
type Action struct {
	Name   string         `json:"function"`
	Params map[string]any `json:"params,omitempty"`
}

// Decision is the engine's structured output for one iteration. Transient,
// never persisted.
type Decision struct {
	RelevantData []string `json:"relevant_data,omitempty"`
	Actions      []Action `json:"actions,omitempty"`
	NextSteps    []Action `json:"next_steps,omitempty"`
	Status       Status   `json:"status"`
}

// Empty reports whether the decision requests no work at all. An empty
// continue decision is a fixed point and terminates the run.
func (d Decision) Empty() bool {
	return len(d.Actions) == 0 && len(d.NextSteps) == 0
}

// ActionOutcome records how one dispatched action went, for the iteration record.
type ActionOutcome struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, failed, skipped
	Error  string `json:"error,omitempty"`
}

// StoreDelta is the condensed per-iteration snapshot of what changed in the
// knowledge store.
type StoreDelta struct {
	Contacts   int `json:"contacts,omitempty"`
	PainPoints int `json:"pain_points,omitempty"`
	Tech       int `json:"tech,omitempty"`
	News       int `json:"news,omitempty"`
	Images     int `json:"images,omitempty"`
	Explored   int `json:"explored,omitempty"`
}

// IterationRecord is the append-only audit trail entry for one loop iteration.
type IterationRecord struct {
	Index        int             `json:"index"` // 1-based
	StartedAt    time.Time       `json:"started_at"`
	RelevantData []string        `json:"relevant_data,omitempty"`
	Actions      []ActionOutcome `json:"actions,omitempty"`
	Explored     []string        `json:"explored,omitempty"`
	Skipped      []string        `json:"skipped,omitempty"` // duplicate explorations
	Delta        StoreDelta      `json:"delta"`
	Errors       []string        `json:"errors,omitempty"`
}
