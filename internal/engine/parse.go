package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mkarel/prospect/internal/model"
)

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bareJSON   = regexp.MustCompile(`(?s)\{.*\}`)
)

// wireAction tolerates both "function" and "name" keys for the action name.
type wireAction struct {
	Function string         `json:"function"`
	Name     string         `json:"name"`
	Params   map[string]any `json:"params"`
}

type wireDecision struct {
	RelevantData []string     `json:"relevant_data"`
	Actions      []wireAction `json:"actions"`
	NextSteps    []wireAction `json:"next_steps"`
	Status       string       `json:"status"`
}

// ParseDecision extracts the Decision JSON from a raw model reply. Replies
// wrapped in markdown fences or surrounded by prose are handled; anything
// that still fails to decode comes back as model.ErrMalformedDecision with
// a snippet of the raw text attached.
func ParseDecision(raw string) (model.Decision, error) {
	text := strings.TrimSpace(raw)

	candidate := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := bareJSON.FindString(text); m != "" {
		candidate = m
	}

	var wire wireDecision
	if err := json.Unmarshal([]byte(candidate), &wire); err != nil {
		return model.Decision{}, fmt.Errorf("%w: %v (raw: %s)", model.ErrMalformedDecision, err, snippet(raw))
	}

	decision := model.Decision{
		RelevantData: wire.RelevantData,
		Actions:      convertActions(wire.Actions),
		NextSteps:    convertActions(wire.NextSteps),
		Status:       model.Status(strings.ToLower(strings.TrimSpace(wire.Status))),
	}
	if decision.Status == "" {
		decision.Status = model.StatusContinue
	}
	return decision, nil
}

func convertActions(in []wireAction) []model.Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Action, 0, len(in))
	for _, a := range in {
		name := a.Function
		if name == "" {
			name = a.Name
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, model.Action{Name: name, Params: a.Params})
	}
	return out
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
