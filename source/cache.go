package source

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document is a fetched document's decoded text. Documents are immutable
// once cached.
type Document struct {
	// ID is the resolved identifier the document was fetched under
	ID string
	// Text is the decoded content
	Text string
	// Size is the raw size in bytes
	Size int64
}

// CacheStats describes cache activity.
type CacheStats struct {
	Documents int
	Hits      int64
	Misses    int64
}

// Cache memoizes documents fetched from a Source for the lifetime of one
// run. Repeat fetches of an identifier return the same *Document; concurrent
// fetches of an uncached identifier share a single underlying Fetch. Failed
// fetches are not cached. There is no invalidation.
type Cache struct {
	src Source

	mu    sync.RWMutex
	docs  map[string]*Document
	order []string

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a cache in front of src.
func NewCache(src Source) *Cache {
	return &Cache{
		src:  src,
		docs: make(map[string]*Document),
	}
}

// Resolve resolves ref against base through the underlying source.
func (c *Cache) Resolve(base, ref string) (string, error) {
	id, err := c.src.Resolve(base, ref)
	if err != nil {
		return "", err
	}
	return normalizeID(id), nil
}

// Fetch returns the document for id, fetching it on first use.
func (c *Cache) Fetch(ctx context.Context, id string) (*Document, error) {
	id = normalizeID(id)
	if doc := c.lookup(id); doc != nil {
		c.hits.Add(1)
		return doc, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		// A concurrent flight may have finished between lookup and Do.
		if doc := c.lookup(id); doc != nil {
			c.hits.Add(1)
			return doc, nil
		}
		data, err := c.src.Fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		doc := &Document{ID: id, Text: Decode(data), Size: int64(len(data))}

		c.mu.Lock()
		c.docs[id] = doc
		c.order = append(c.order, id)
		c.mu.Unlock()
		c.misses.Add(1)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

func (c *Cache) lookup(id string) *Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs[id]
}

// IDs returns the identifiers of all cached documents in first-fetch order.
func (c *Cache) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Stats returns a snapshot of cache activity.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.docs)
	c.mu.RUnlock()
	return CacheStats{
		Documents: n,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
	}
}

// Decode converts raw document bytes to text. A UTF-8 or UTF-16 byte order
// mark selects the encoding and is stripped; without one the bytes are read
// as UTF-8 with invalid sequences replaced.
func Decode(data []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return string(data)
	}
	return string(out)
}
