package research

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/model"
)

const (
	maxImageBytes    = 5 << 20
	imageHTTPTimeout = 20 * time.Second
)

// ImageStore downloads person images into a per-company directory and keeps
// a JSON manifest of everything collected there.
type ImageStore struct {
	client  *http.Client
	baseDir string
	logger  *zap.Logger
}

// NewImageStore creates a store rooted at <baseDir>/images. A nil return
// from the caller side (downloads disabled) is handled by the orchestrator.
func NewImageStore(baseDir string, logger *zap.Logger) (*ImageStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := filepath.Join(baseDir, "images")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageStore{
		client:  &http.Client{Timeout: imageHTTPTimeout},
		baseDir: root,
		logger:  logger,
	}, nil
}

// Download fetches one image and writes it under the company's directory.
// Returns the path relative to the image root. The filename is derived from
// the source URL so repeated downloads of the same image overwrite in place.
func (s *ImageStore) Download(ctx context.Context, rawURL, company string) (string, error) {
	name := imageFilename(rawURL)
	dir := filepath.Join(s.baseDir, sanitizeName(company))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create company dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrFetch, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: image fetch returned %d", model.ErrFetch, resp.StatusCode)
	}

	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	_, copyErr := io.Copy(f, io.LimitReader(resp.Body, maxImageBytes))
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(full)
		return "", fmt.Errorf("write image: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("write image: %w", closeErr)
	}

	rel := filepath.Join(sanitizeName(company), name)
	s.logger.Debug("image saved", zap.String("url", rawURL), zap.String("path", rel))
	return rel, nil
}

// AppendManifest merges one image record into the company's manifest.json.
func (s *ImageStore) AppendManifest(company string, img model.Image) error {
	dir := filepath.Join(s.baseDir, sanitizeName(company))
	manifest := filepath.Join(dir, "manifest.json")

	var entries []model.Image
	if data, err := os.ReadFile(manifest); err == nil {
		// A corrupt manifest is rewritten from scratch rather than failing.
		_ = json.Unmarshal(data, &entries)
	}
	entries = append(entries, img)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(manifest, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// imageFilename builds person_<hash><ext> from the source URL, keeping the
// original extension when the URL path carries a recognizable one.
func imageFilename(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	ext := ".jpg"
	if u, err := url.Parse(rawURL); err == nil {
		switch e := strings.ToLower(path.Ext(u.Path)); e {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp":
			ext = e
		}
	}
	return "person_" + hex.EncodeToString(sum[:])[:12] + ext
}

// sanitizeName turns a company name into a safe directory name.
func sanitizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "company"
	}
	return b.String()
}
