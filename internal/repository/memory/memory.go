package memory

import (
	"context"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

// DefaultCapacity is how many entries of each kind are retained
const DefaultCapacity = 500

// Repository implements domain.DataRepository in process memory.
// It is used when no database is configured.
type Repository struct {
	mu       sync.RWMutex
	capacity int
	traffic  []domain.TrafficSummary
	weather  []domain.WeatherRecord
}

// NewRepository creates an in-memory repository keeping the last capacity entries of each kind
func NewRepository(capacity int) *Repository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Repository{capacity: capacity}
}

// SaveTrafficSummary appends a snapshot digest, evicting the oldest past capacity
func (r *Repository) SaveTrafficSummary(ctx context.Context, s domain.TrafficSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traffic = appendBounded(r.traffic, s, r.capacity)
	return nil
}

// SaveWeatherRecord appends a weather reading, evicting the oldest past capacity
func (r *Repository) SaveWeatherRecord(ctx context.Context, w domain.WeatherRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weather = appendBounded(r.weather, w, r.capacity)
	return nil
}

// GetHistoricalTraffic returns digests stamped within [from, to], newest first
func (r *Repository) GetHistoricalTraffic(ctx context.Context, from, to time.Time) ([]domain.TrafficSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.traffic, from, to, func(s domain.TrafficSummary) time.Time { return s.Timestamp }), nil
}

// GetHistoricalWeather returns readings stamped within [from, to], newest first
func (r *Repository) GetHistoricalWeather(ctx context.Context, from, to time.Time) ([]domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.weather, from, to, func(w domain.WeatherRecord) time.Time { return w.Timestamp }), nil
}

// Health always succeeds
func (r *Repository) Health(ctx context.Context) error {
	return nil
}

func appendBounded[T any](items []T, item T, capacity int) []T {
	items = append(items, item)
	if len(items) > capacity {
		items = append(items[:0:0], items[len(items)-capacity:]...)
	}
	return items
}

// newestFirst walks insertion order backwards; entries are appended as they are stamped
func newestFirst[T any](items []T, from, to time.Time, stamp func(T) time.Time) []T {
	out := []T{}
	for i := len(items) - 1; i >= 0; i-- {
		ts := stamp(items[i])
		if ts.Before(from) || ts.After(to) {
			continue
		}
		out = append(out, items[i])
	}
	return out
}
