package news

import (
	"sync"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

// nowFn is swapped in tests.
var nowFn = time.Now

// headlineCache stores fetched headlines per query with a TTL.
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	headlines []types.Headline
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	return &headlineCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

// get retrieves cached headlines if still fresh.
func (c *headlineCache) get(query string) ([]types.Headline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[query]
	if !exists {
		return nil, false
	}
	if nowFn().Sub(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.headlines, true
}

// set stores headlines, evicting whatever is expired while the lock is
// held anyway.
func (c *headlineCache) set(query string, headlines []types.Headline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := nowFn()
	for q, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, q)
		}
	}

	c.data[query] = &cacheEntry{headlines: headlines, timestamp: now}
}
