package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mkarel/prospect/internal/cite"
	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/registry"
	"github.com/mkarel/prospect/internal/research"
	"github.com/mkarel/prospect/internal/store"
)

func testRun(t *testing.T) *research.RunResult {
	t.Helper()
	subject := model.Subject{
		Name:    "Acme Robotics",
		Website: "https://acme.test",
		Phone:   "555-0100",
	}
	ledger := cite.NewLedger()
	k := store.New(subject, ledger, nil)

	if err := k.AddContact(model.Contact{
		Name: "Acme Robotics", Phone: "555-0100", SourceURL: model.SourceInput,
	}); err != nil {
		t.Fatal(err)
	}
	if err := k.AddContact(model.Contact{
		Name: "Dana Reeve", Title: "CTO", Email: "dana@acme.test",
		SourceURL: "https://acme.test/team",
	}); err != nil {
		t.Fatal(err)
	}
	if err := k.AddTech(model.TechStackEntry{
		Technology: "Go", Category: "backend", SourceURL: "https://acme.test/stack",
	}); err != nil {
		t.Fatal(err)
	}
	if err := k.AddTech(model.TechStackEntry{
		Technology: "PostgreSQL", Category: "database", SourceURL: "https://acme.test/stack",
	}); err != nil {
		t.Fatal(err)
	}
	if err := k.AddNews(model.NewsItem{
		Title: "Acme raises Series B", Date: "2026-08-01",
		SourceURL: "https://news.test/acme",
	}); err != nil {
		t.Fatal(err)
	}
	if err := k.AddExploredSource("https://acme.test/team", "team"); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return &research.RunResult{
		RunID:      "test-run",
		Subject:    subject,
		State:      research.StateDone,
		Knowledge:  k,
		Ledger:     ledger,
		Iterations: []model.IterationRecord{{Index: 1, StartedAt: now}},
		StartedAt:  now,
		FinishedAt: now.Add(time.Minute),
	}
}

func TestMarkdownFootnotes(t *testing.T) {
	md := Markdown(testRun(t))

	if !strings.Contains(md, "# Acme Robotics") {
		t.Fatal("missing title")
	}
	// Cited facts carry markers; the ledger resolves them at the bottom.
	if !strings.Contains(md, "Dana Reeve") || !strings.Contains(md, "[^1]") {
		t.Fatal("contact missing its footnote marker")
	}
	if !strings.Contains(md, "[^1]: https://acme.test/team") {
		t.Fatal("reference 1 missing from bibliography")
	}
	if !strings.Contains(md, "[^2]: https://acme.test/stack") {
		t.Fatal("reference 2 missing from bibliography")
	}
	if !strings.Contains(md, "[^3]: https://news.test/acme") {
		t.Fatal("reference 3 missing from bibliography")
	}
	if strings.Contains(md, "[^0]") {
		t.Fatal("baseline fact must not render a footnote marker")
	}
}

func TestMarkdownGroupsTechByCategory(t *testing.T) {
	md := Markdown(testRun(t))

	if !strings.Contains(md, "### Backend") || !strings.Contains(md, "### Database") {
		t.Fatalf("tech categories missing:\n%s", md)
	}
	backend := strings.Index(md, "### Backend")
	database := strings.Index(md, "### Database")
	if backend > database {
		t.Fatal("categories not sorted")
	}
}

func TestMarkdownAbortedRunMarkedIncomplete(t *testing.T) {
	run := testRun(t)
	run.State = research.StateAborted

	if !strings.Contains(Markdown(run), "incomplete") {
		t.Fatal("aborted run not flagged")
	}
}

func TestJSONDumpRoundTrips(t *testing.T) {
	data, err := JSON(testRun(t))
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state.RunID != "test-run" || state.State != string(research.StateDone) {
		t.Fatalf("run metadata wrong: %+v", state)
	}
	if len(state.Contacts) != 2 || len(state.TechStack) != 2 || len(state.News) != 1 {
		t.Fatalf("fact counts wrong: %+v", state)
	}
	if len(state.References) != 3 {
		t.Fatalf("references = %d, want 3", len(state.References))
	}
	if state.References[0].Number != 1 {
		t.Fatalf("first reference number = %d, want 1", state.References[0].Number)
	}
	if state.Contacts[0].Citation != 0 || state.Contacts[1].Citation != 1 {
		t.Fatalf("contact citations wrong: %+v", state.Contacts)
	}
}

func TestJSONDumpCarriesMissingActions(t *testing.T) {
	run := testRun(t)
	run.MissingActions = map[string]registry.MissingAction{
		"summon_intern": {Count: 3, ExampleParams: map[string]any{"task": "coffee"}},
	}

	data, err := JSON(run)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(string(data), "summon_intern") {
		t.Fatal("missing-action log absent from JSON dump")
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	entry, ok := state.MissingActions["summon_intern"]
	if !ok || entry.Count != 3 {
		t.Fatalf("missing actions = %+v, want summon_intern with count 3", state.MissingActions)
	}
}

func TestMergeMissingActions(t *testing.T) {
	a := testRun(t)
	a.MissingActions = map[string]registry.MissingAction{
		"summon_intern": {Count: 2, ExampleParams: map[string]any{"task": "coffee"}},
	}
	b := testRun(t)
	b.MissingActions = map[string]registry.MissingAction{
		"summon_intern": {Count: 1},
		"warp_drive":    {Count: 4},
	}

	merged := MergeMissingActions([]*research.RunResult{a, nil, b})
	if len(merged) != 2 {
		t.Fatalf("merged = %+v, want 2 names", merged)
	}
	if merged["summon_intern"].Count != 3 {
		t.Fatalf("summon_intern count = %d, want 3", merged["summon_intern"].Count)
	}
	if merged["summon_intern"].ExampleParams["task"] != "coffee" {
		t.Fatalf("example params not kept: %+v", merged["summon_intern"])
	}
	if merged["warp_drive"].Count != 4 {
		t.Fatalf("warp_drive count = %d, want 4", merged["warp_drive"].Count)
	}
}

func TestBatchSummary(t *testing.T) {
	run := testRun(t)
	rows := []SubjectSummary{
		Summarize(run, nil),
		{Name: "Broken Co", State: string(research.StateAborted), Err: "provider unavailable"},
	}
	out := BatchSummary(rows, run.StartedAt, run.FinishedAt)

	if !strings.Contains(out, "2 subjects") {
		t.Fatal("subject count missing")
	}
	if !strings.Contains(out, "| Acme Robotics | done | 1 | 2 | 2 | 1 | - |") {
		t.Fatalf("summary row wrong:\n%s", out)
	}
	if !strings.Contains(out, "provider unavailable") {
		t.Fatal("error column missing")
	}
}
