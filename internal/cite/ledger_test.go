package cite

import (
	"errors"
	"testing"

	"github.com/mkarel/prospect/internal/model"
)

func TestLedger_SameURLSameNumber(t *testing.T) {
	l := NewLedger()

	n1, err := l.Cite("https://acme.test/about")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n1 != 1 {
		t.Errorf("expected first citation to be 1, got %d", n1)
	}

	n2, err := l.Cite("https://acme.test/about")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n2 != n1 {
		t.Errorf("expected repeated cite to return %d, got %d", n1, n2)
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", l.Len())
	}
}

func TestLedger_DistinctURLsDistinctNumbers(t *testing.T) {
	l := NewLedger()

	urls := []string{
		"https://acme.test",
		"https://acme.test/about",
		"https://acme.test/team",
	}

	seen := make(map[int]string)
	for _, u := range urls {
		n, err := l.Cite(u)
		if err != nil {
			t.Fatalf("cite %s: %v", u, err)
		}
		if prev, dup := seen[n]; dup {
			t.Errorf("number %d assigned to both %s and %s", n, prev, u)
		}
		seen[n] = u
	}
}

func TestLedger_DenseAscendingOrder(t *testing.T) {
	l := NewLedger()

	l.Cite("https://a.test")
	l.Cite("https://b.test")
	l.Cite("https://a.test") // repeat must not allocate
	l.Cite("https://c.test")

	entries := l.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Number != i+1 {
			t.Errorf("entry %d has number %d, want %d", i, e.Number, i+1)
		}
	}
	if entries[0].URL != "https://a.test" || entries[2].URL != "https://c.test" {
		t.Errorf("entries not in first-seen order: %+v", entries)
	}
}

func TestLedger_EmptyURLRejected(t *testing.T) {
	l := NewLedger()

	for _, u := range []string{"", "   "} {
		if _, err := l.Cite(u); !errors.Is(err, model.ErrInvalidInput) {
			t.Errorf("cite(%q): expected ErrInvalidInput, got %v", u, err)
		}
	}
	if l.Len() != 0 {
		t.Errorf("rejected cites must not allocate, ledger has %d entries", l.Len())
	}
}

func TestLedger_AllIdempotent(t *testing.T) {
	l := NewLedger()
	l.Cite("https://a.test")

	first := l.All()
	second := l.All()
	if len(first) != len(second) {
		t.Fatalf("All mutated state: %d vs %d entries", len(first), len(second))
	}
}
