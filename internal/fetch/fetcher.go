// Package fetch retrieves page content for the research loop. The core only
// requires the Fetcher interface; the HTTP implementation here adds
// robots.txt politeness, shared rate limiting, and a layered page cache.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/model"
)

// Content is a fetched page, reduced to what the engine and the image
// classifier need.
type Content struct {
	URL       string    `json:"url"`       // requested URL
	FinalURL  string    `json:"final_url"` // after redirects
	HTML      string    `json:"html"`
	Text      string    `json:"text"` // readable text for prompts
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher is the content-fetching capability the orchestrator consumes.
// Implementations may be an HTTP GET, a headless browser, or a stub.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Content, error)
}

// Limiter gates outbound requests. Satisfied by the worker limiter.
type Limiter interface {
	WaitWithDelay(ctx context.Context, rawURL string, delay time.Duration) error
}

// HTTPFetcher fetches pages over plain HTTP with a size cap and redirect cap.
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *robotsChecker // nil when robots checking is disabled
	cache      *PageCache     // nil when caching is disabled
	limiter    Limiter        // nil when rate limiting is disabled
	logger     *zap.Logger
}

// NewHTTPFetcher builds a fetcher from configuration. cache and limiter may
// be nil.
func NewHTTPFetcher(cfg model.HTTPConfig, cache *PageCache, limiter Limiter, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	var robots *robotsChecker
	if cfg.RespectRobots {
		robots = newRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
		cache:     cache,
		limiter:   limiter,
		logger:    logger,
	}
}

// Fetch retrieves a page. All failures come back wrapped in model.ErrFetch;
// the caller marks the URL explored either way.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	target, err := normalizeTarget(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFetch, err)
	}

	if f.cache != nil {
		if content, ok := f.cache.Get(target); ok {
			f.logger.Debug("cache hit", zap.String("url", target))
			return content, nil
		}
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.canFetch(ctx, target)
		if err != nil {
			f.logger.Debug("robots.txt check failed, allowing", zap.String("url", target), zap.Error(err))
		} else if !allowed {
			return nil, fmt.Errorf("%w: disallowed by robots.txt: %s", model.ErrFetch, target)
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, target, crawlDelay); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", model.ErrFetch, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", model.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d for %s", model.ErrFetch, resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", model.ErrFetch, err)
	}

	html := string(body)
	content := &Content{
		URL:       target,
		FinalURL:  resp.Request.URL.String(),
		HTML:      html,
		Text:      ExtractText(html),
		FetchedAt: time.Now().UTC(),
	}

	if f.cache != nil {
		f.cache.Set(target, content)
	}

	return content, nil
}

// normalizeTarget validates the URL and defaults the scheme to https.
func normalizeTarget(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host: %s", rawURL)
	}
	return u.String(), nil
}

// marshal/unmarshal for the page cache.

func (c *Content) encode() ([]byte, error) {
	return json.Marshal(c)
}

func decodeContent(data []byte) (*Content, error) {
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
