package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/research"
)

// fakeResearcher fails the subjects named in failures and succeeds otherwise.
type fakeResearcher struct {
	mu       sync.Mutex
	failures map[string]bool
	seen     []string
}

func (f *fakeResearcher) Research(_ context.Context, subject model.Subject) (*research.RunResult, error) {
	f.mu.Lock()
	f.seen = append(f.seen, subject.Name)
	f.mu.Unlock()

	if f.failures[subject.Name] {
		return &research.RunResult{
			Subject: subject,
			State:   research.StateAborted,
		}, fmt.Errorf("research %s: %w", subject.Name, model.ErrProviderUnavailable)
	}
	return &research.RunResult{
		Subject: subject,
		State:   research.StateDone,
	}, nil
}

func TestBatchResultsKeepInputOrder(t *testing.T) {
	subjects := []model.Subject{
		{Name: "Alpha"}, {Name: "Beta"}, {Name: "Gamma"}, {Name: "Delta"},
	}
	b := NewBatchProcessor(&fakeResearcher{}, 3, nil)

	results := b.Process(context.Background(), subjects)
	if len(results) != len(subjects) {
		t.Fatalf("results = %d, want %d", len(results), len(subjects))
	}
	for i, r := range results {
		if r.Subject.Name != subjects[i].Name {
			t.Fatalf("result %d is %q, want %q", i, r.Subject.Name, subjects[i].Name)
		}
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	subjects := []model.Subject{{Name: "Good"}, {Name: "Bad"}, {Name: "AlsoGood"}}
	b := NewBatchProcessor(&fakeResearcher{failures: map[string]bool{"Bad": true}}, 2, nil)

	results := b.Process(context.Background(), subjects)
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	var failed, succeeded int
	for _, r := range results {
		if r.Err != nil {
			failed++
			if !errors.Is(r.Err, model.ErrProviderUnavailable) {
				t.Fatalf("unexpected error: %v", r.Err)
			}
			if r.Run == nil {
				t.Fatal("failed subject should still carry its partial run")
			}
		} else {
			succeeded++
			if r.Run.State != research.StateDone {
				t.Fatalf("state = %s, want %s", r.Run.State, research.StateDone)
			}
		}
	}
	if failed != 1 || succeeded != 2 {
		t.Fatalf("failed=%d succeeded=%d, want 1 and 2", failed, succeeded)
	}
}

func TestBatchRunsEverySubjectOnce(t *testing.T) {
	subjects := make([]model.Subject, 10)
	for i := range subjects {
		subjects[i] = model.Subject{Name: fmt.Sprintf("Company %d", i)}
	}
	f := &fakeResearcher{}
	b := NewBatchProcessor(f, 4, nil)

	b.Process(context.Background(), subjects)

	seen := make(map[string]int)
	for _, name := range f.seen {
		seen[name]++
	}
	if len(seen) != len(subjects) {
		t.Fatalf("distinct subjects researched = %d, want %d", len(seen), len(subjects))
	}
	for name, n := range seen {
		if n != 1 {
			t.Fatalf("%s researched %d times", name, n)
		}
	}
}
