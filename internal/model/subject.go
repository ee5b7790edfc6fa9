package model

import "strings"

// SourceInput is the sentinel source URL for facts seeded from caller input
// (the subject's own CSV row) rather than the web. It consumes no citation
// number and is excluded from the bibliography.
const SourceInput = "input"

// Subject is the company under research. Immutable input for one run.
type Subject struct {
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// DisplayName returns the subject name, falling back to the website host.
func (s Subject) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	if s.Website != "" {
		return s.Website
	}
	return "unknown"
}
