package main

import (
	"sync"
	"time"

	"github.com/Skufu/MedIntel/internal/analysis"
)

// maxCachedResults bounds the cache between expiries.
const maxCachedResults = 1024

type cachedResult struct {
	result  analysis.Result
	expires time.Time
}

// resultCache memoizes analyses by sanitized query text. A zero TTL disables it.
type resultCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	entries map[string]cachedResult
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		max:     maxCachedResults,
		now:     time.Now,
		entries: make(map[string]cachedResult),
	}
}

func (c *resultCache) Get(key string) (analysis.Result, bool) {
	if c.ttl <= 0 {
		return analysis.Result{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return analysis.Result{}, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return analysis.Result{}, false
	}
	return entry.result, true
}

// Set stores res under key. The map is swept only when full; if nothing
// has expired, the entry closest to expiry is evicted.
func (c *resultCache) Set(key string, res analysis.Result) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.makeRoom(now)
	}
	c.entries[key] = cachedResult{result: res, expires: now.Add(c.ttl)}
}

func (c *resultCache) makeRoom(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	if len(c.entries) >= c.max {
		delete(c.entries, oldestKey)
	}
}

func (c *resultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
