package composition

import (
	"strings"
	"sync"
)

// Cache holds compositions keyed by an identifier (for example a deck and
// board) together with the revision they were computed at. An entry is only
// returned while the caller asks for the same revision.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
}

type cacheEntry struct {
	revision int64
	result   Composition
}

// NewCache creates a cache that holds at most maxSize entries.
// A maxSize of 0 or less means unlimited.
func NewCache(maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
	}
}

// Get returns the composition cached for key at revision.
func (c *Cache) Get(key string, revision int64) (Composition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.revision != revision {
		return Composition{}, false
	}
	return e.result.clone(), true
}

// GetOrCompute returns the cached composition for key at revision, or
// aggregates load() and caches the result. load is only called on a miss and
// reports the revision its entries were actually read at, which may be newer
// than the one asked for; the result is stored under that revision and
// returned with it.
func (c *Cache) GetOrCompute(key string, revision int64, load func() ([]CardEntry, int64, error)) (Composition, int64, error) {
	if result, ok := c.Get(key, revision); ok {
		return result, revision, nil
	}

	entries, loaded, err := load()
	if err != nil {
		return Composition{}, 0, err
	}
	result := Aggregate(entries)
	c.Put(key, loaded, result)
	return result.clone(), loaded, nil
}

// Put stores result for key at revision, replacing any older revision.
func (c *Cache) Put(key string, revision int64, result Composition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		// Evict an arbitrary entry; stale revisions are recomputed on demand.
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = cacheEntry{revision: revision, result: result.clone()}
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
