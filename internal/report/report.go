// Package report renders finished research runs as markdown dossiers with
// footnote citations, plus machine-readable JSON dumps for downstream tools.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/research"
)

// Markdown renders one run as a markdown dossier. Every cited fact carries a
// footnote marker; the bibliography at the end maps markers back to URLs in
// ledger order. Citation 0 (caller-supplied input) renders without a marker.
func Markdown(res *research.RunResult) string {
	var b strings.Builder
	subject := res.Subject

	fmt.Fprintf(&b, "# %s\n\n", subject.DisplayName())
	fmt.Fprintf(&b, "Researched %s", res.FinishedAt.Format("2006-01-02 15:04 MST"))
	if res.State == research.StateAborted {
		b.WriteString(" (incomplete: run aborted)")
	}
	b.WriteString("\n\n")

	writeOverview(&b, subject, res)
	writeContacts(&b, res.Knowledge.Contacts())
	writePainPoints(&b, res.Knowledge.PainPoints())
	writeTechStack(&b, res.Knowledge.Tech())
	writeNews(&b, res.Knowledge.News())
	writeImages(&b, res.Knowledge.Images())
	writeSources(&b, res)

	return b.String()
}

func writeOverview(b *strings.Builder, subject model.Subject, res *research.RunResult) {
	b.WriteString("## Overview\n\n")
	if subject.Website != "" {
		fmt.Fprintf(b, "- Website: %s\n", subject.Website)
	}
	if subject.Address != "" {
		fmt.Fprintf(b, "- Address: %s\n", subject.Address)
	}
	if subject.Phone != "" {
		fmt.Fprintf(b, "- Phone: %s\n", subject.Phone)
	}
	counts := res.Knowledge.Summary()
	fmt.Fprintf(b, "- Iterations: %d, sources explored: %d, citations: %d\n\n",
		len(res.Iterations), counts.Explored, counts.Citations)
}

func writeContacts(b *strings.Builder, contacts []model.Contact) {
	if len(contacts) == 0 {
		return
	}
	b.WriteString("## Contacts\n\n")
	b.WriteString("| Name | Title | Email | Phone | Source |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, c := range contacts {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			cell(c.Name), cell(c.Title), cell(c.Email), cell(c.Phone), marker(c.Citation))
	}
	b.WriteString("\n")
}

func writePainPoints(b *strings.Builder, pains []model.PainPoint) {
	if len(pains) == 0 {
		return
	}
	b.WriteString("## Pain Points\n\n")
	for _, p := range pains {
		fmt.Fprintf(b, "- %s%s", p.Description, marker(p.Citation))
		if p.Evidence != "" {
			fmt.Fprintf(b, "\n  - Evidence: %s", p.Evidence)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeTechStack(b *strings.Builder, tech []model.TechStackEntry) {
	if len(tech) == 0 {
		return
	}
	b.WriteString("## Tech Stack\n\n")

	byCategory := make(map[string][]model.TechStackEntry)
	var categories []string
	for _, t := range tech {
		cat := t.Category
		if cat == "" {
			cat = "uncategorized"
		}
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], t)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		fmt.Fprintf(b, "### %s\n\n", titleCase(cat))
		for _, t := range byCategory[cat] {
			fmt.Fprintf(b, "- %s%s\n", t.Technology, marker(t.Citation))
		}
		b.WriteString("\n")
	}
}

func writeNews(b *strings.Builder, news []model.NewsItem) {
	if len(news) == 0 {
		return
	}
	b.WriteString("## News\n\n")
	for _, n := range news {
		fmt.Fprintf(b, "- **%s**%s", n.Title, marker(n.Citation))
		if n.Date != "" {
			fmt.Fprintf(b, " (%s)", n.Date)
		}
		if n.Summary != "" {
			fmt.Fprintf(b, "\n  %s", n.Summary)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeImages(b *strings.Builder, images []model.Image) {
	if len(images) == 0 {
		return
	}
	b.WriteString("## People\n\n")
	for _, img := range images {
		name := img.PersonName
		if name == "" {
			name = "Unidentified person"
		}
		fmt.Fprintf(b, "- %s", name)
		if img.PersonTitle != "" {
			fmt.Fprintf(b, ", %s", img.PersonTitle)
		}
		b.WriteString(marker(img.Citation))
		if img.Filename != "" {
			fmt.Fprintf(b, " (`images/%s`)", img.Filename)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeSources(b *strings.Builder, res *research.RunResult) {
	explored := res.Knowledge.Explored()
	if len(explored) > 0 {
		b.WriteString("## Sources Explored\n\n")
		for _, s := range explored {
			fmt.Fprintf(b, "- %s (%s)\n", s.URL, s.Category)
		}
		b.WriteString("\n")
	}

	entries := res.Ledger.All()
	if len(entries) == 0 {
		return
	}
	b.WriteString("## References\n\n")
	for _, e := range entries {
		fmt.Fprintf(b, "[^%d]: %s\n", e.Number, e.URL)
	}
}

// marker renders a footnote marker for a citation number. Baseline facts
// (citation 0) carry no marker.
func marker(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("[^%d]", n)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

// BatchSummary renders a one-line-per-subject summary of a batch run.
func BatchSummary(results []SubjectSummary, startedAt, finishedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Batch Summary\n\n")
	fmt.Fprintf(&b, "%d subjects, %s\n\n", len(results), finishedAt.Sub(startedAt).Round(time.Second))
	b.WriteString("| Subject | State | Iterations | Contacts | Tech | News | Error |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, r := range results {
		errText := "-"
		if r.Err != "" {
			errText = cell(r.Err)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %s |\n",
			cell(r.Name), r.State, r.Iterations, r.Contacts, r.Tech, r.News, errText)
	}
	return b.String()
}

// SubjectSummary is one batch row.
type SubjectSummary struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	Iterations int    `json:"iterations"`
	Contacts   int    `json:"contacts"`
	Tech       int    `json:"tech"`
	News       int    `json:"news"`
	Err        string `json:"error,omitempty"`
}

// Summarize builds a SubjectSummary from one run result.
func Summarize(res *research.RunResult, err error) SubjectSummary {
	s := SubjectSummary{Name: res.Subject.DisplayName(), State: string(res.State)}
	s.Iterations = len(res.Iterations)
	counts := res.Knowledge.Summary()
	s.Contacts = counts.Contacts
	s.Tech = counts.Tech
	s.News = counts.News
	if err != nil {
		s.Err = err.Error()
	}
	return s
}
