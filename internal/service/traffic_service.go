package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

// MaxHoursAhead bounds the prediction horizon
const MaxHoursAhead = predictionHours

// TrafficService serves network snapshots: live from TomTom when configured,
// synthesized otherwise, cached for the snapshot TTL.
type TrafficService struct {
	estimator *CongestionEstimator
	builder   *NetworkBuilder
	live      *TomTomAdapter
	cache     *SnapshotCache
	repo      DataRepository
	policy    UpstreamPolicy
	now       func() time.Time

	defaultLat float64
	defaultLon float64

	wgBg sync.WaitGroup // tracks background archive writes for graceful shutdown
}

// TrafficServiceConfig bundles the collaborators of a TrafficService
type TrafficServiceConfig struct {
	Estimator  *CongestionEstimator
	Builder    *NetworkBuilder
	Live       *TomTomAdapter
	Cache      *SnapshotCache
	Repo       DataRepository
	Policy     UpstreamPolicy
	Now        func() time.Time
	DefaultLat float64
	DefaultLon float64
}

// NewTrafficService creates a new traffic service
func NewTrafficService(cfg TrafficServiceConfig) *TrafficService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewSnapshotCache(DefaultSnapshotTTL, now)
	}
	return &TrafficService{
		estimator:  cfg.Estimator,
		builder:    cfg.Builder,
		live:       cfg.Live,
		cache:      cache,
		repo:       cfg.Repo,
		policy:     cfg.Policy,
		now:        now,
		defaultLat: cfg.DefaultLat,
		defaultLon: cfg.DefaultLon,
	}
}

// WaitBackground blocks until all background archive goroutines complete
func (s *TrafficService) WaitBackground() {
	s.wgBg.Wait()
}

// Status returns the current snapshot. Nil coordinates fall back to the configured centre;
// they only matter when the snapshot is regenerated.
func (s *TrafficService) Status(ctx context.Context, lat, lon *float64, refresh bool) (*domain.NetworkSnapshot, error) {
	centerLat, centerLon := s.defaultLat, s.defaultLon
	if lat != nil {
		centerLat = *lat
	}
	if lon != nil {
		centerLon = *lon
	}

	var fresh bool
	snap, err := s.cache.Get(ctx, refresh, func(ctx context.Context) (*domain.NetworkSnapshot, error) {
		fresh = true
		return s.generate(ctx, centerLat, centerLon)
	})
	if err != nil {
		return nil, err
	}

	// archived after the cache has stamped it
	if fresh {
		s.archive(snap)
	}
	return snap, nil
}

func (s *TrafficService) generate(ctx context.Context, lat, lon float64) (*domain.NetworkSnapshot, error) {
	now := s.now()

	if s.live.Configured() {
		snap, err := s.live.Fetch(ctx, lat, lon, now)
		if err == nil {
			return snap, nil
		}
		if s.policy.Strict {
			return nil, err
		}
		log.Printf("traffic: live data unavailable, falling back to synthetic data: %v", err)
	}

	return s.builder.Build(lat, lon, now), nil
}

// archive persists the snapshot digest asynchronously
func (s *TrafficService) archive(snap *domain.NetworkSnapshot) {
	if s.repo == nil {
		return
	}
	summary := snap.Summary()

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveTrafficSummary(bgCtx, summary); err != nil {
			log.Printf("traffic: failed to archive snapshot %s: %v", summary.SnapshotID, err)
		}
	}()
}

// Roads returns the roads of the current snapshot
func (s *TrafficService) Roads(ctx context.Context, lat, lon *float64) ([]domain.Road, error) {
	snap, err := s.Status(ctx, lat, lon, false)
	if err != nil {
		return nil, err
	}
	return snap.Roads, nil
}

// Road returns one road of the current snapshot
func (s *TrafficService) Road(ctx context.Context, id string) (domain.Road, error) {
	snap, err := s.Status(ctx, nil, nil, false)
	if err != nil {
		return domain.Road{}, err
	}
	road, ok := snap.FindRoad(id)
	if !ok {
		return domain.Road{}, notFoundf("Road segment %s not found", id)
	}
	return road, nil
}

// Junctions returns the junctions of the current snapshot
func (s *TrafficService) Junctions(ctx context.Context, lat, lon *float64) ([]domain.Junction, error) {
	snap, err := s.Status(ctx, lat, lon, false)
	if err != nil {
		return nil, err
	}
	return snap.Junctions, nil
}

// Incidents returns the incidents of the current snapshot
func (s *TrafficService) Incidents(ctx context.Context, lat, lon *float64) ([]domain.Incident, error) {
	snap, err := s.Status(ctx, lat, lon, false)
	if err != nil {
		return nil, err
	}
	return snap.Incidents, nil
}

// Prediction returns every road's forecast hoursAhead hours from now (1..12)
func (s *TrafficService) Prediction(ctx context.Context, hoursAhead int) (domain.TrafficPrediction, error) {
	if hoursAhead < 1 || hoursAhead > MaxHoursAhead {
		return domain.TrafficPrediction{}, invalidf("Hours ahead must be between 1 and %d", MaxHoursAhead)
	}

	snap, err := s.Status(ctx, nil, nil, false)
	if err != nil {
		return domain.TrafficPrediction{}, err
	}

	predictions := make([]domain.RoadPrediction, 0, len(snap.Roads))
	for _, road := range snap.Roads {
		if hoursAhead > len(road.Prediction) {
			continue
		}
		p := road.Prediction[hoursAhead-1]
		predictions = append(predictions, domain.RoadPrediction{
			RoadID:          road.ID,
			RoadName:        road.Name,
			Timestamp:       p.Timestamp,
			CongestionScore: p.CongestionScore,
			CongestionLevel: p.CongestionLevel,
		})
	}

	return domain.TrafficPrediction{
		Timestamp:   s.now().Add(time.Duration(hoursAhead) * time.Hour),
		HoursAhead:  hoursAhead,
		Predictions: predictions,
	}, nil
}

// Model describes the congestion estimator
func (s *TrafficService) Model() domain.ModelInfo {
	return s.estimator.Info()
}

// History returns archived snapshot digests for the last hours (1..MaxHistoryHours)
func (s *TrafficService) History(ctx context.Context, hours int) ([]domain.TrafficSummary, error) {
	if err := checkHistoryHours(hours); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errors.New("traffic: no repository configured")
	}
	to := s.now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := s.repo.GetHistoricalTraffic(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("traffic: failed to load history: %w", err)
	}
	return data, nil
}
