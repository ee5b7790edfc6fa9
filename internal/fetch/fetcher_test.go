package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkarel/prospect/internal/model"
)

func testConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "Prospect-test/0.1",
		MaxBodyBytes: 1 << 20,
		// robots checking off: httptest servers have no robots.txt
		RespectRobots: false,
	}
}

func TestFetch_ReturnsContentAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "Prospect-test/0.1" {
			t.Errorf("user agent not set: %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`<html><head><script>var x=1;</script></head><body><h1>Acme Co</h1><p>We build rockets.</p></body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testConfig(), nil, nil, nil)
	content, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content.Text, "We build rockets.") {
		t.Errorf("text extraction lost body: %q", content.Text)
	}
	if strings.Contains(content.Text, "var x=1") {
		t.Errorf("script content leaked into text: %q", content.Text)
	}
	if content.FetchedAt.IsZero() {
		t.Error("fetched_at not stamped")
	}
}

func TestFetch_ErrorStatusIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testConfig(), nil, nil, nil)
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, model.ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(testConfig(), nil, nil, nil)

	for _, u := range []string{"ftp://acme.test/x", "not a url at all \x00"} {
		if _, err := f.Fetch(context.Background(), u); !errors.Is(err, model.ErrFetch) {
			t.Errorf("Fetch(%q): expected ErrFetch, got %v", u, err)
		}
	}
}

func TestFetch_BodySizeCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodyBytes = 100
	f := NewHTTPFetcher(cfg, nil, nil, nil)

	content, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content.HTML) > 100 {
		t.Errorf("body not capped: %d bytes", len(content.HTML))
	}
}

func TestFetch_CacheAvoidsSecondRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html><body>cached page</body></html>"))
	}))
	defer srv.Close()

	cache := NewPageCache(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute})
	f := NewHTTPFetcher(testConfig(), cache, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestFetch_DiskCacheSurvivesNewFetcher(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html><body>persisted</body></html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := model.CacheConfig{Enabled: true, Dir: dir, MemoryTTL: time.Minute, DiskTTL: time.Hour}

	f1 := NewHTTPFetcher(testConfig(), NewPageCache(cfg), nil, nil)
	if _, err := f1.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	f2 := NewHTTPFetcher(testConfig(), NewPageCache(cfg), nil, nil)
	content, err := f2.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !strings.Contains(content.HTML, "persisted") {
		t.Errorf("unexpected cached content: %q", content.HTML)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("expected 1 upstream request, got %d", got)
	}
}

func TestExtractText_CollapsesAndCaps(t *testing.T) {
	text := ExtractText("<html><body><p>one</p>\n\n<p>two   three</p><nav>menu</nav></body></html>")
	if text != "one two three" {
		t.Errorf("unexpected text: %q", text)
	}
}
