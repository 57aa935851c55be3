package service

import (
	"context"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

// DefaultSnapshotTTL is how long a snapshot is served before regeneration
const DefaultSnapshotTTL = 5 * time.Minute

// SnapshotGenerator produces a replacement snapshot on a cache miss
type SnapshotGenerator func(ctx context.Context) (*domain.NetworkSnapshot, error)

// SnapshotCache holds at most one network snapshot.
// The mutex is held across regeneration, so concurrent misses share a single rebuild and
// readers never observe a half-replaced entry. The cost is that a slow regeneration
// blocks every reader: on the live path that is two sequential provider calls with
// 10s client timeouts, so readers can stall for up to 20s. That includes readers whose
// entry is still valid while another caller forces a refresh.
type SnapshotCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	snapshot    *domain.NetworkSnapshot
	generatedAt time.Time
}

// NewSnapshotCache creates an empty cache. A nil clock uses time.Now.
func NewSnapshotCache(ttl time.Duration, now func() time.Time) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{ttl: ttl, now: now}
}

// Get returns the cached snapshot while it is younger than the TTL, unless forceRefresh is set.
// Otherwise it calls generate and stores the result. A failed generation keeps the old entry.
func (c *SnapshotCache) Get(ctx context.Context, forceRefresh bool, generate SnapshotGenerator) (*domain.NetworkSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.snapshot != nil && c.now().Sub(c.generatedAt) < c.ttl {
		return c.snapshot, nil
	}

	snap, err := generate(ctx)
	if err != nil {
		return nil, err
	}

	stamp := c.now()
	if c.snapshot != nil && !stamp.After(c.generatedAt) {
		stamp = c.generatedAt.Add(time.Microsecond)
	}
	snap.Timestamp = stamp

	c.snapshot = snap
	c.generatedAt = stamp
	return snap, nil
}

// Peek returns the cached snapshot without regenerating, if any
func (c *SnapshotCache) Peek() (*domain.NetworkSnapshot, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.generatedAt, c.snapshot != nil
}
