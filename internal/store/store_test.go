package store

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/mkarel/prospect/internal/cite"
	"github.com/mkarel/prospect/internal/model"
)

func newTestStore() *Knowledge {
	subject := model.Subject{Name: "Acme Co", Website: "https://acme.test"}
	return New(subject, cite.NewLedger(), nil)
}

func TestAddContact_RejectsWithoutNameOrEmail(t *testing.T) {
	k := newTestStore()

	err := k.AddContact(model.Contact{
		Phone:     "555-1234",
		SourceURL: "https://acme.test",
	})
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// Whitespace-only fields count as empty.
	err = k.AddContact(model.Contact{
		Name:      "   ",
		Email:     " ",
		Phone:     "555-1234",
		SourceURL: "https://acme.test",
	})
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for whitespace contact, got %v", err)
	}

	if got := k.Summary().Contacts; got != 0 {
		t.Errorf("expected 0 contacts, got %d", got)
	}
}

func TestAddContact_AcceptsNameOnly(t *testing.T) {
	k := newTestStore()

	err := k.AddContact(model.Contact{
		Name:      "Jane Doe",
		SourceURL: "https://acme.test/team",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contacts := k.Contacts()
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if contacts[0].Citation != 1 {
		t.Errorf("expected citation 1, got %d", contacts[0].Citation)
	}
	if contacts[0].RecordedAt.IsZero() {
		t.Error("expected recorded_at to be stamped")
	}
}

func TestAddFact_RejectsEmptySourceURL(t *testing.T) {
	k := newTestStore()

	if err := k.AddContact(model.Contact{Name: "Jane Doe"}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("contact without source_url: expected ErrInvalidInput, got %v", err)
	}
	if err := k.AddPainPoint(model.PainPoint{Description: "slow site"}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("pain point without source_url: expected ErrInvalidInput, got %v", err)
	}
	if err := k.AddTech(model.TechStackEntry{Technology: "WordPress"}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("tech without source_url: expected ErrInvalidInput, got %v", err)
	}
	if err := k.AddNews(model.NewsItem{Title: "Acme expands"}); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("news without source_url: expected ErrInvalidInput, got %v", err)
	}

	s := k.Summary()
	if s.Contacts+s.PainPoints+s.Tech+s.News != 0 {
		t.Errorf("rejected facts entered the store: %+v", s)
	}
}

func TestAdd_InputSentinelConsumesNoCitation(t *testing.T) {
	k := newTestStore()

	if err := k.AddContact(model.Contact{Name: "Acme Co", SourceURL: model.SourceInput}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contacts := k.Contacts()
	if contacts[0].Citation != 0 {
		t.Errorf("input-seeded fact should have citation 0, got %d", contacts[0].Citation)
	}
	if got := k.Summary().Citations; got != 0 {
		t.Errorf("input sentinel must not enter the ledger, got %d citations", got)
	}
}

func TestSharedCitationAcrossFacts(t *testing.T) {
	k := newTestStore()
	url := "https://acme.test/stack"

	if err := k.AddTech(model.TechStackEntry{Technology: "React", SourceURL: url}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := k.AddTech(model.TechStackEntry{Technology: "PostgreSQL", SourceURL: url}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tech := k.Tech()
	if tech[0].Citation != tech[1].Citation {
		t.Errorf("facts from one URL must share a citation: %d vs %d", tech[0].Citation, tech[1].Citation)
	}
	if got := k.Summary().Citations; got != 1 {
		t.Errorf("expected exactly 1 ledger entry, got %d", got)
	}
}

func TestSharedCitationAcrossURLVariants(t *testing.T) {
	k := newTestStore()

	if err := k.AddTech(model.TechStackEntry{
		Technology: "Go", SourceURL: "https://acme.test/stack",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := k.AddTech(model.TechStackEntry{
		Technology: "PostgreSQL", SourceURL: "https://ACME.test/stack/?utm_source=x",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tech := k.Tech()
	if tech[0].Citation != tech[1].Citation {
		t.Errorf("normalized-equal URLs must share a citation: %d vs %d", tech[0].Citation, tech[1].Citation)
	}
	if got := k.Summary().Citations; got != 1 {
		t.Errorf("expected exactly 1 ledger entry, got %d", got)
	}
}

func TestDuplicateFactsKept(t *testing.T) {
	k := newTestStore()

	for i := 0; i < 2; i++ {
		if err := k.AddPainPoint(model.PainPoint{
			Description: "manual invoicing",
			SourceURL:   "https://acme.test/blog",
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := k.Summary().PainPoints; got != 2 {
		t.Errorf("duplicate facts must not be deduplicated, got %d", got)
	}
}

func TestExploredSources_NoDuplicates(t *testing.T) {
	k := newTestStore()

	variants := []string{
		"https://acme.test/about",
		"https://acme.test/about/",
		"HTTPS://ACME.TEST/about?utm_source=x",
		"https://acme.test:443/about#team",
	}
	for _, u := range variants {
		if err := k.AddExploredSource(u, "about"); err != nil {
			t.Fatalf("add %s: %v", u, err)
		}
	}

	if got := k.Summary().Explored; got != 1 {
		t.Errorf("expected 1 explored source after normalization, got %d", got)
	}
	for _, u := range variants {
		if !k.HasExplored(u) {
			t.Errorf("expected HasExplored(%q) to be true", u)
		}
	}
	if k.HasExplored("https://acme.test/team") {
		t.Error("unexplored URL reported as explored")
	}
}

func TestSnapshot_Immutable(t *testing.T) {
	k := newTestStore()
	k.AddContact(model.Contact{Name: "Jane Doe", SourceURL: "https://acme.test/team"})

	snap := k.Snapshot()
	snap.Contacts[0].Name = "mutated"
	snap.Explored = append(snap.Explored, "https://evil.test")

	if k.Contacts()[0].Name != "Jane Doe" {
		t.Error("mutating a snapshot leaked into the store")
	}
	if k.HasExplored("https://evil.test") {
		t.Error("snapshot mutation altered explored set")
	}
}

func TestSnapshot_CarriesPageExcerpts(t *testing.T) {
	k := newTestStore()
	k.SetPageExcerpt("https://acme.test/about", "Acme builds rockets. Founded by Jane Doe.", 20)

	snap := k.Snapshot()
	if len(snap.PageExcerpts) != 1 {
		t.Fatalf("expected 1 excerpt, got %d", len(snap.PageExcerpts))
	}
	if len(snap.PageExcerpts[0].Text) > 20 {
		t.Errorf("excerpt not truncated: %d bytes", len(snap.PageExcerpts[0].Text))
	}
}

func TestSetPageExcerpt_TruncatesOnRuneBoundary(t *testing.T) {
	k := newTestStore()
	// "é" is 2 bytes; a byte limit of 5 lands inside the second "é".
	k.SetPageExcerpt("https://acme.test/fr", "ééééé", 5)

	snap := k.Snapshot()
	got := snap.PageExcerpts[0].Text
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	if got != "éé" {
		t.Errorf("excerpt = %q, want %q", got, "éé")
	}
}
