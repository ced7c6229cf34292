package tokens

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of counts a CachingCounter keeps.
const DefaultCacheSize = 4096

type cacheKey struct {
	model string
	text  string
}

// CachingCounter memoizes another Counter in a bounded LRU.
// Conversation logs are re-counted on every turn, so most prior turns hit.
type CachingCounter struct {
	inner Counter
	cache *lru.Cache[cacheKey, int]
}

// NewCachingCounter wraps inner with an LRU of the given size.
// A size <= 0 uses DefaultCacheSize.
func NewCachingCounter(inner Counter, size int) *CachingCounter {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes.
	cache, _ := lru.New[cacheKey, int](size)
	return &CachingCounter{inner: inner, cache: cache}
}

// Count returns the cached count or computes and stores it.
func (c *CachingCounter) Count(model, text string) int {
	key := cacheKey{model: model, text: text}
	if n, ok := c.cache.Get(key); ok {
		return n
	}
	n := c.inner.Count(model, text)
	c.cache.Add(key, n)
	return n
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *CachingCounter) FitsInLimit(model, text string, limit int) bool {
	return c.Count(model, text) <= limit
}

// Len returns the number of cached entries.
func (c *CachingCounter) Len() int {
	return c.cache.Len()
}

// Purge drops every cached entry.
func (c *CachingCounter) Purge() {
	c.cache.Purge()
}

var _ Counter = (*CachingCounter)(nil)
