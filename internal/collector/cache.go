package collector

import (
	"sync"
	"time"
)

type ttlItem[T any] struct {
	value     T
	expiresAt time.Time
}

// ttlCache is a per-symbol cache whose entries go stale after a fixed TTL.
type ttlCache[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]ttlItem[T]
}

func newTTLCache[T any](ttl time.Duration, now func() time.Time) *ttlCache[T] {
	return &ttlCache[T]{ttl: ttl, now: now, items: make(map[string]ttlItem[T])}
}

func (c *ttlCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok || !c.now().Before(item.expiresAt) {
		var zero T
		return zero, false
	}
	return item.value, true
}

func (c *ttlCache[T]) set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlItem[T]{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *ttlCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *ttlCache[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]ttlItem[T])
}
