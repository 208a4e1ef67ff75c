package gateway

import (
	"sync"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
)

// profileCache is a small in-memory TTL cache for provider profiles so
// dashboard renders don't hit the provider on every request.
type profileCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	profile   *session.Profile
	expiresAt time.Time
}

func newProfileCache(ttl time.Duration) *profileCache {
	return &profileCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *profileCache) Get(userID string) *session.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[userID]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.profile
}

func (c *profileCache) Set(userID string, p *session.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Opportunistically drop expired entries instead of running a
	// background sweeper.
	now := time.Now()
	for id, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, id)
		}
	}

	c.data[userID] = &cacheEntry{
		profile:   p,
		expiresAt: now.Add(c.ttl),
	}
}

func (c *profileCache) Delete(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
}
