package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/registry"
	"github.com/mkarel/prospect/internal/research"
)

// RunState is the machine-readable dump of one run: every fact with its
// citation number, the full ledger, and the iteration history.
type RunState struct {
	RunID      string                  `json:"run_id"`
	Subject    model.Subject           `json:"subject"`
	State      string                  `json:"state"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Error      string                  `json:"error,omitempty"`
	Contacts   []model.Contact         `json:"contacts"`
	PainPoints []model.PainPoint       `json:"pain_points"`
	TechStack  []model.TechStackEntry  `json:"tech_stack"`
	News       []model.NewsItem        `json:"news"`
	Images     []model.Image           `json:"images"`
	Explored   []model.ExploredSource  `json:"sources_explored"`
	References []Reference             `json:"references"`
	Iterations []model.IterationRecord `json:"iterations"`

	// MissingActions surfaces the action names the engine requested that had
	// no registered handler, so operators can see which capabilities are
	// being asked for.
	MissingActions map[string]registry.MissingAction `json:"missing_actions,omitempty"`
}

// Reference is one ledger entry in the dump.
type Reference struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// NewRunState flattens a run result for serialization.
func NewRunState(res *research.RunResult) RunState {
	state := RunState{
		RunID:      res.RunID,
		Subject:    res.Subject,
		State:      string(res.State),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Contacts:   res.Knowledge.Contacts(),
		PainPoints: res.Knowledge.PainPoints(),
		TechStack:  res.Knowledge.Tech(),
		News:       res.Knowledge.News(),
		Images:     res.Knowledge.Images(),
		Explored:   res.Knowledge.Explored(),
		Iterations: res.Iterations,
	}
	if len(res.MissingActions) > 0 {
		state.MissingActions = res.MissingActions
	}
	if res.Err != nil {
		state.Error = res.Err.Error()
	}
	for _, e := range res.Ledger.All() {
		state.References = append(state.References, Reference{Number: e.Number, URL: e.URL})
	}
	return state
}

// MergeMissingActions folds per-run missing-action logs into one operator
// view, summing counts per name and keeping the first example parameter set.
func MergeMissingActions(runs []*research.RunResult) map[string]registry.MissingAction {
	merged := make(map[string]registry.MissingAction)
	for _, run := range runs {
		if run == nil {
			continue
		}
		for name, entry := range run.MissingActions {
			m := merged[name]
			if m.ExampleParams == nil {
				m.ExampleParams = entry.ExampleParams
			}
			m.Count += entry.Count
			merged[name] = m
		}
	}
	return merged
}

// JSON renders the run state as indented JSON.
func JSON(res *research.RunResult) ([]byte, error) {
	data, err := json.MarshalIndent(NewRunState(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode run state: %w", err)
	}
	return data, nil
}
