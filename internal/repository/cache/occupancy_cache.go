package cache

import (
	"sync"
	"time"

	"github.com/matchroute-service/internal/clock"
	"github.com/matchroute-service/internal/domain"
)

type occupancyEntry struct {
	snapshots []domain.OccupancySnapshot
	expiresAt time.Time
}

// OccupancyCache - процессный кеш полного снимка загрузки, один ключ на источник.
// Записи только истекают по TTL и заменяются целиком.
type OccupancyCache struct {
	mu      sync.RWMutex
	entries map[string]occupancyEntry
	ttl     time.Duration
	clock   clock.Clock
}

func NewOccupancyCache(ttl time.Duration, clk clock.Clock) *OccupancyCache {
	return &OccupancyCache{
		entries: make(map[string]occupancyEntry),
		ttl:     ttl,
		clock:   clk,
	}
}

// Get returns the cached list for source while it is unexpired.
func (c *OccupancyCache) Get(source string) ([]domain.OccupancySnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[source]
	c.mu.RUnlock()

	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.snapshots, true
}

// Set replaces the list for source and restarts its TTL.
func (c *OccupancyCache) Set(source string, snapshots []domain.OccupancySnapshot) {
	c.SetFor(source, snapshots, c.ttl)
}

// SetFor replaces the list for source with an expiry of ttl, capped at the cache TTL.
// Used when the list was fetched earlier elsewhere and only part of its lifetime is left.
func (c *OccupancyCache) SetFor(source string, snapshots []domain.OccupancySnapshot, ttl time.Duration) {
	if ttl > c.ttl {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = occupancyEntry{
		snapshots: snapshots,
		expiresAt: c.clock.Now().Add(ttl),
	}
}

func (c *OccupancyCache) TTL() time.Duration {
	return c.ttl
}
