package model

import "time"

// Contact is a person or reachable department found during research.
// Validation: at least one of Name/Email must be non-empty after trimming.
// A phone-only contact is form-field noise, not a person.
type Contact struct {
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	LinkedIn   string    `json:"linkedin,omitempty"`
	Source     string    `json:"source,omitempty"` // human description of where it was found
	SourceURL  string    `json:"source_url"`
	Citation   int       `json:"citation,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PainPoint is an observed business problem with supporting evidence.
type PainPoint struct {
	Description string    `json:"description"`
	Evidence    string    `json:"evidence,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceURL   string    `json:"source_url"`
	Citation    int       `json:"citation,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// TechStackEntry is a technology the subject appears to use.
type TechStackEntry struct {
	Technology string    `json:"technology"`
	Category   string    `json:"category,omitempty"`
	SourceURL  string    `json:"source_url"`
	Citation   int       `json:"citation,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewsItem is a news headline or summary about the subject.
type NewsItem struct {
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Date       string    `json:"date,omitempty"`
	SourceURL  string    `json:"source_url"`
	Citation   int       `json:"citation,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ExploredSource records that a source has been visited, successfully or not,
// so the engine never requests the same exploration twice.
type ExploredSource struct {
	URL        string    `json:"url"`
	Category   string    `json:"category"` // homepage, about, team, social, news, webpage
	ExploredAt time.Time `json:"explored_at"`
}

// Image is a downloaded person photograph with its page context.
type Image struct {
	Filename     string    `json:"filename,omitempty"`
	SourceURL    string    `json:"source_url"`
	PageContext  string    `json:"page_context,omitempty"`
	PersonName   string    `json:"person_name,omitempty"`
	PersonTitle  string    `json:"person_title,omitempty"`
	AltText      string    `json:"alt_text,omitempty"`
	Citation     int       `json:"citation,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
