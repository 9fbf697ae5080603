package dedupe

import (
	"sync"
	"time"
)

type stamp struct {
	key string
	at  time.Time
}

// SeenCache remembers recently published article IDs so repeated feed polls
// do not republish the same item inside the ttl window.
type SeenCache struct {
	mu       sync.Mutex
	byKey    map[string]time.Time
	queue    []stamp
	capacity int
	ttl      time.Duration
}

// NewSeenCache creates a cache bounded by capacity and ttl.
func NewSeenCache(capacity int, ttl time.Duration) *SeenCache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SeenCache{
		byKey:    make(map[string]time.Time, capacity),
		queue:    make([]stamp, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Seen reports whether key was recorded inside the ttl window. It does not
// record the key; use Remember for that.
func (c *SeenCache) Seen(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.byKey[key]
	return ok && now.Sub(at) <= c.ttl
}

// Remember records that key was processed.
func (c *SeenCache) Remember(key string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKey[key] = now
	c.queue = append(c.queue, stamp{key: key, at: now})
	c.evict(now)
}

// Len returns the number of live entries.
func (c *SeenCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *SeenCache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.queue) > 0 && (len(c.byKey) > c.capacity || c.queue[0].at.Before(cutoff)) {
		oldest := c.queue[0]
		c.queue = c.queue[1:]

		// A key re-recorded after this queue entry keeps its newer stamp.
		if at, ok := c.byKey[oldest.key]; ok && at.Equal(oldest.at) {
			delete(c.byKey, oldest.key)
		}
	}
}
