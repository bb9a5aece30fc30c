package data

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"settlement-compare/internal/model"
)

type cacheEntry struct {
	records   []model.RawRecord
	expiresAt time.Time
}

// ResponseCache keeps decoded upstream responses in memory for a fixed TTL.
//
// The client only consults it for settlement dates before the current UTC day,
// so the live series is always fetched fresh. Disabled unless configured.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewResponseCache creates a cache. A non-positive ttl defaults to one hour.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResponseCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves cached records if available and not expired.
func (c *ResponseCache) Get(key string) ([]model.RawRecord, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.records, true
}

// Set stores records and drops any expired entries.
func (c *ResponseCache) Set(key string, records []model.RawRecord) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.store {
		if now.After(e.expiresAt) {
			delete(c.store, k)
		}
	}
	c.store[key] = cacheEntry{
		records:   records,
		expiresAt: now.Add(c.ttl),
	}
}

// Clear removes all entries from the cache.
func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]cacheEntry)
}

func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// GenerateCacheKey hashes a fully-encoded request URL.
func GenerateCacheKey(requestURL string) string {
	hash := sha256.Sum256([]byte(requestURL))
	return hex.EncodeToString(hash[:])
}
