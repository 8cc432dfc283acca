package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/specflat"
	"github.com/erraggy/specflat/flatten"
	"github.com/erraggy/specflat/source"
)

// specInput represents the ways an entry document can be provided to a tool.
// Exactly one of File, URL, or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to the entry document on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch the entry document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline entry document content (YAML or JSON). Includes resolve against the server working directory"`
}

// cacheEntry holds a flattened result with LRU ordering and TTL expiry.
// stamps records the modification time of every local document the result
// was built from.
type cacheEntry struct {
	result    *flatten.Result
	stamps    map[string]int64
	insertAt  time.Time
	expiresAt time.Time
}

// resultCacheStore provides a session-scoped cache for flattened documents.
// File inputs are keyed by absolute path, content inputs by a SHA-256 hash,
// and URL inputs by URL string. An entry is dropped as soon as any local
// document it was built from, includes included, has changed.
type resultCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var resultCache = &resultCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired and stale entries are lazily
// removed.
func (c *resultCacheStore) get(key string) *flatten.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	if !maps.Equal(e.stamps, stamp(e.result.Dependencies())) {
		delete(c.entries, key)
		return nil
	}
	// Touch entry for LRU.
	e.insertAt = time.Now()
	return e.result
}

// putWithTTL stores a result with a specific TTL, evicting the oldest entry if at capacity.
func (c *resultCacheStore) putWithTTL(key string, result *flatten.Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{
		result:    result,
		stamps:    stamp(result.Dependencies()),
		insertAt:  now,
		expiresAt: now.Add(ttl),
	}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	// Evict oldest if at capacity.
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *resultCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *resultCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *resultCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *resultCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// stamp returns the modification time of each local document in ids.
// Missing documents are recorded as -1 so that their creation is noticed.
func stamp(ids []string) map[string]int64 {
	stamps := make(map[string]int64, len(ids))
	for _, id := range ids {
		if id == "" || source.IsURL(id) {
			continue
		}
		info, err := os.Stat(id)
		if err != nil {
			stamps[id] = -1
			continue
		}
		stamps[id] = info.ModTime().UnixNano()
	}
	return stamps
}

// makeCacheKey creates a cache key for the given spec input.
func makeCacheKey(s specInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		return "file:" + absPath
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	case s.URL != "":
		return "url:" + s.URL
	default:
		return ""
	}
}

// resolve flattens the document from whichever input was provided, using
// the cache when enabled.
func (s specInput) resolve(ctx context.Context) (*flatten.Result, error) {
	count := 0
	if s.File != "" {
		count++
	}
	if s.URL != "" {
		count++
	}
	if s.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file, url, or content must be provided (got %d)", count)
	}

	// Enforce inline content size limit.
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set SPECFLAT_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	var key string
	ttl := cfg.CacheFileTTL
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		if s.URL != "" {
			ttl = cfg.CacheURLTTL
		}
	}
	if key != "" {
		if cached := resultCache.get(key); cached != nil {
			return cached, nil
		}
	}

	opts := []flatten.Option{
		flatten.WithConcurrency(cfg.Concurrency),
		flatten.WithResolveHTTP(cfg.ResolveHTTP),
		flatten.WithUserAgent(specflat.UserAgent()),
	}
	// Remote documents are fetched with an SSRF-safe client unless private
	// IPs are allowed.
	if !cfg.AllowPrivateIPs {
		opts = append(opts, flatten.WithHTTPClient(newSafeHTTPClient()))
	}
	switch {
	case s.File != "":
		opts = append(opts, flatten.WithFilePath(s.File))
	case s.URL != "":
		opts = append(opts, flatten.WithURL(s.URL))
	case s.Content != "":
		opts = append(opts, flatten.WithBytes([]byte(s.Content)))
	}

	result, err := flatten.FlattenWithOptions(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if key != "" {
		resultCache.putWithTTL(key, result, ttl)
	}
	return result, nil
}
