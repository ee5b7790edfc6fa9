package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mkarel/prospect/internal/model"
)

// PageCache is a two-layer cache for fetched pages: an in-memory TTL cache in
// front of JSON entries on disk. Re-running research over the same companies
// should not hammer their sites.
type PageCache struct {
	memory  *gocache.Cache
	dir     string // empty disables the disk layer
	diskTTL time.Duration
}

// NewPageCache creates a cache per configuration. Returns nil when caching
// is disabled, which the fetcher treats as no cache.
func NewPageCache(cfg model.CacheConfig) *PageCache {
	if !cfg.Enabled {
		return nil
	}
	memTTL := cfg.MemoryTTL
	if memTTL <= 0 {
		memTTL = 30 * time.Minute
	}
	return &PageCache{
		memory:  gocache.New(memTTL, 10*time.Minute),
		dir:     cfg.Dir,
		diskTTL: cfg.DiskTTL,
	}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the cached content for a URL, promoting disk hits to memory.
func (c *PageCache) Get(url string) (*Content, bool) {
	key := cacheKey(url)

	if v, found := c.memory.Get(key); found {
		if content, ok := v.(*Content); ok {
			return content, true
		}
	}

	if c.dir == "" {
		return nil, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if err != nil {
		return nil, false
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(filepath.Join(c.dir, key+".json"))
		return nil, false
	}
	content, err := decodeContent(entry.Data)
	if err != nil {
		return nil, false
	}

	c.memory.SetDefault(key, content)
	return content, true
}

// Set stores content in both layers. Disk errors are swallowed; the cache is
// an optimization, not a store of record.
func (c *PageCache) Set(url string, content *Content) {
	key := cacheKey(url)
	c.memory.SetDefault(key, content)

	if c.dir == "" {
		return
	}
	data, err := content.encode()
	if err != nil {
		return
	}
	ttl := c.diskTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	entry, err := json.Marshal(diskEntry{Data: data, ExpiresAt: time.Now().Add(ttl)})
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, key+".json"), entry, 0o644)
}

func cacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "prospect-v1-" + hex.EncodeToString(hash[:16])
}
