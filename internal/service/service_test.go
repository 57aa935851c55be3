package service

import (
	"sync"
	"time"
)

// Wednesday morning rush
var testNow = time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)

func testRand(seed int64) RandomSource {
	return NewRandomSource(seed)
}

// manualClock is a settable clock for cache and service tests
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock(t time.Time) *manualClock {
	return &manualClock{t: t}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func neverHoliday(time.Time) bool { return false }
