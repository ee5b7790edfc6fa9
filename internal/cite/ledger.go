// Package cite assigns stable citation numbers to source URLs. One Ledger
// instance belongs to one research run; numbers form a dense 1..N sequence
// with no gaps and no reuse across different URLs.
package cite

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mkarel/prospect/internal/model"
)

// Entry is one bibliography row.
type Entry struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// Ledger maps source URLs to citation numbers, first-seen order from 1.
type Ledger struct {
	mu      sync.Mutex
	numbers map[string]int
	urls    []string // index i holds the URL for citation i+1
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		numbers: make(map[string]int),
	}
}

// Cite returns the citation number for url, allocating the next integer on
// first sight. The same URL always yields the same number for the lifetime
// of the ledger.
func (l *Ledger) Cite(url string) (int, error) {
	if strings.TrimSpace(url) == "" {
		return 0, fmt.Errorf("cite: empty url: %w", model.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if n, ok := l.numbers[url]; ok {
		return n, nil
	}

	l.urls = append(l.urls, url)
	n := len(l.urls)
	l.numbers[url] = n
	return n, nil
}

// All returns every entry in ascending citation-number order. Idempotent.
func (l *Ledger) All() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, len(l.urls))
	for i, url := range l.urls {
		entries[i] = Entry{Number: i + 1, URL: url}
	}
	return entries
}

// Len returns the number of distinct URLs cited.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.urls)
}
