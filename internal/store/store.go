// Package store accumulates the cited research record for one subject.
// Facts are append-only: the store validates and rejects before admission
// but never edits or removes an admitted fact. Duplicate facts from
// different sources are legitimate signals and are kept.
package store

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/cite"
	"github.com/mkarel/prospect/internal/model"
)

// Knowledge is the growing record of everything learned about one subject.
// One instance per research run, owned by the orchestrator.
type Knowledge struct {
	subject model.Subject
	ledger  *cite.Ledger
	logger  *zap.Logger

	contacts   []model.Contact
	painPoints []model.PainPoint
	tech       []model.TechStackEntry
	news       []model.NewsItem
	images     []model.Image
	explored   []model.ExploredSource

	exploredSet map[string]struct{} // normalized URLs
	excerpts    map[string]string   // normalized URL -> page text for prompts
	excerptURLs []string            // insertion order of excerpts

	now func() time.Time
}

// New creates an empty store for subject, citing through ledger.
func New(subject model.Subject, ledger *cite.Ledger, logger *zap.Logger) *Knowledge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Knowledge{
		subject:     subject,
		ledger:      ledger,
		logger:      logger,
		exploredSet: make(map[string]struct{}),
		excerpts:    make(map[string]string),
		now:         time.Now,
	}
}

// cite validates the source URL and returns its citation number. The "input"
// sentinel is accepted with citation 0 and never enters the ledger. Citation
// identity follows NormalizeURL, so trailing-slash and tracking-query
// variants of one page share one bibliography entry.
func (k *Knowledge) cite(sourceURL string) (int, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return 0, fmt.Errorf("fact has no source url: %w", model.ErrInvalidInput)
	}
	if sourceURL == model.SourceInput {
		return 0, nil
	}
	return k.ledger.Cite(NormalizeURL(sourceURL))
}

// AddContact admits a contact fact. Rejects when name and email are both
// empty after trimming, regardless of phone.
func (k *Knowledge) AddContact(c model.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Title = strings.TrimSpace(c.Title)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)

	if c.Name == "" && c.Email == "" {
		k.logger.Warn("rejected contact without name or email",
			zap.String("phone", c.Phone),
			zap.String("source_url", c.SourceURL))
		return fmt.Errorf("contact needs a name or an email: %w", model.ErrInvalidInput)
	}

	n, err := k.cite(c.SourceURL)
	if err != nil {
		k.logger.Warn("rejected contact", zap.String("name", c.Name), zap.Error(err))
		return err
	}

	c.Citation = n
	c.RecordedAt = k.now()
	k.contacts = append(k.contacts, c)
	k.logger.Info("saved contact",
		zap.String("name", c.Name),
		zap.String("title", c.Title),
		zap.Int("citation", n))
	return nil
}

// AddPainPoint admits a pain-point fact.
func (k *Knowledge) AddPainPoint(p model.PainPoint) error {
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		k.logger.Warn("rejected pain point without description")
		return fmt.Errorf("pain point needs a description: %w", model.ErrInvalidInput)
	}

	n, err := k.cite(p.SourceURL)
	if err != nil {
		k.logger.Warn("rejected pain point", zap.Error(err))
		return err
	}

	p.Citation = n
	p.RecordedAt = k.now()
	k.painPoints = append(k.painPoints, p)
	k.logger.Info("saved pain point", zap.String("description", p.Description), zap.Int("citation", n))
	return nil
}

// AddTech admits a technology fact.
func (k *Knowledge) AddTech(t model.TechStackEntry) error {
	t.Technology = strings.TrimSpace(t.Technology)
	if t.Technology == "" {
		k.logger.Warn("rejected tech entry without a name")
		return fmt.Errorf("tech entry needs a technology name: %w", model.ErrInvalidInput)
	}

	n, err := k.cite(t.SourceURL)
	if err != nil {
		k.logger.Warn("rejected tech entry", zap.String("technology", t.Technology), zap.Error(err))
		return err
	}

	t.Citation = n
	t.RecordedAt = k.now()
	k.tech = append(k.tech, t)
	k.logger.Info("saved technology", zap.String("technology", t.Technology), zap.Int("citation", n))
	return nil
}

// AddNews admits a news fact.
func (k *Knowledge) AddNews(item model.NewsItem) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		k.logger.Warn("rejected news item without a title")
		return fmt.Errorf("news item needs a title: %w", model.ErrInvalidInput)
	}

	n, err := k.cite(item.SourceURL)
	if err != nil {
		k.logger.Warn("rejected news item", zap.Error(err))
		return err
	}

	item.Citation = n
	item.RecordedAt = k.now()
	k.news = append(k.news, item)
	return nil
}

// AddImage admits a downloaded-image fact.
func (k *Knowledge) AddImage(img model.Image) error {
	n, err := k.cite(img.SourceURL)
	if err != nil {
		k.logger.Warn("rejected image", zap.String("filename", img.Filename), zap.Error(err))
		return err
	}

	img.Citation = n
	if img.DownloadedAt.IsZero() {
		img.DownloadedAt = k.now()
	}
	k.images = append(k.images, img)
	return nil
}

// AddExploredSource marks a source as visited. Idempotent on normalized URL:
// the explored set only grows and never holds duplicates.
func (k *Knowledge) AddExploredSource(url, category string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("explored source has no url: %w", model.ErrInvalidInput)
	}

	key := NormalizeURL(url)
	if _, ok := k.exploredSet[key]; ok {
		return nil
	}

	k.exploredSet[key] = struct{}{}
	k.explored = append(k.explored, model.ExploredSource{
		URL:        url,
		Category:   category,
		ExploredAt: k.now(),
	})
	return nil
}

// HasExplored reports whether a URL (after normalization) has been visited.
func (k *Knowledge) HasExplored(url string) bool {
	_, ok := k.exploredSet[NormalizeURL(url)]
	return ok
}

// SetPageExcerpt keeps a truncated slice of fetched page text so the next
// analysis pass can reason over it.
func (k *Knowledge) SetPageExcerpt(url, text string, limit int) {
	key := NormalizeURL(url)
	if limit > 0 && len(text) > limit {
		// Back off to a rune boundary so the cut never splits a multi-byte
		// sequence.
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	if _, ok := k.excerpts[key]; !ok {
		k.excerptURLs = append(k.excerptURLs, key)
	}
	k.excerpts[key] = text
}

// Counts is the structured summary used for logging and termination heuristics.
type Counts struct {
	Contacts   int `json:"contacts"`
	PainPoints int `json:"pain_points"`
	Tech       int `json:"tech"`
	News       int `json:"news"`
	Images     int `json:"images"`
	Explored   int `json:"explored"`
	Citations  int `json:"citations"`
}

// Summary returns current fact counts.
func (k *Knowledge) Summary() Counts {
	return Counts{
		Contacts:   len(k.contacts),
		PainPoints: len(k.painPoints),
		Tech:       len(k.tech),
		News:       len(k.news),
		Images:     len(k.images),
		Explored:   len(k.explored),
		Citations:  k.ledger.Len(),
	}
}

// Delta returns what changed between two summaries.
func (after Counts) Delta(before Counts) model.StoreDelta {
	return model.StoreDelta{
		Contacts:   after.Contacts - before.Contacts,
		PainPoints: after.PainPoints - before.PainPoints,
		Tech:       after.Tech - before.Tech,
		News:       after.News - before.News,
		Images:     after.Images - before.Images,
		Explored:   after.Explored - before.Explored,
	}
}

// Accessors below return copies so no caller holds a mutable reference into
// the store.

func (k *Knowledge) Subject() model.Subject { return k.subject }

func (k *Knowledge) Contacts() []model.Contact {
	return append([]model.Contact(nil), k.contacts...)
}

func (k *Knowledge) PainPoints() []model.PainPoint {
	return append([]model.PainPoint(nil), k.painPoints...)
}

func (k *Knowledge) Tech() []model.TechStackEntry {
	return append([]model.TechStackEntry(nil), k.tech...)
}

func (k *Knowledge) News() []model.NewsItem {
	return append([]model.NewsItem(nil), k.news...)
}

func (k *Knowledge) Images() []model.Image {
	return append([]model.Image(nil), k.images...)
}

func (k *Knowledge) Explored() []model.ExploredSource {
	return append([]model.ExploredSource(nil), k.explored...)
}
