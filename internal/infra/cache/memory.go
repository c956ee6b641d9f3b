// Package cache holds product read caches: Redis for shared deployments and an
// in-process map for single instances.
package cache

import (
	"context"
	"sync"
	"time"

	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type memoryEntry struct {
	view      queries.ProductView
	expiresAt time.Time
}

type MemoryProductCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	clock   clock.Clock
}

func NewMemoryProductCache(clk clock.Clock) *MemoryProductCache {
	return &MemoryProductCache{entries: make(map[uuid.UUID]memoryEntry), clock: clk}
}

func (c *MemoryProductCache) Get(_ context.Context, id uuid.UUID) (*queries.ProductView, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.entries[id]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	view := e.view
	return &view, true, nil
}

func (c *MemoryProductCache) Set(_ context.Context, view *queries.ProductView, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[view.ID] = memoryEntry{view: *view, expiresAt: c.clock.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryProductCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	return nil
}
