package service

import (
	"math/rand"
	"sync"
	"time"
)

// RandomSource is the randomness every synthesizer draws from.
// *rand.Rand satisfies it; tests inject a seeded one.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// lockedRand serialises access to a *rand.Rand shared by request handlers
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a goroutine-safe source. A zero seed uses the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// randInt draws an integer in [lo, hi]
func randInt(rng RandomSource, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// uniform draws a float in [lo, hi)
func uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// pick returns a random element of items
func pick[T any](rng RandomSource, items []T) T {
	return items[rng.Intn(len(items))]
}

// sample returns k distinct elements of items in random order
func sample[T any](rng RandomSource, items []T, k int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
