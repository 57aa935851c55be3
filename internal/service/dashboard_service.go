package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

// DashboardService aggregates all live data
type DashboardService struct {
	weatherSvc *WeatherService
	airSvc     *AirQualityService
	trafficSvc *TrafficService
	repo       DataRepository
	location   domain.Location

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	weatherSvc *WeatherService,
	airSvc *AirQualityService,
	trafficSvc *TrafficService,
	repo DataRepository,
	location domain.Location,
) *DashboardService {
	return &DashboardService{
		weatherSvc: weatherSvc,
		airSvc:     airSvc,
		trafficSvc: trafficSvc,
		repo:       repo,
		location:   location,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *DashboardService) WaitBackground() {
	s.wgBg.Wait()
}

// GetDashboardData fetches all live data concurrently using goroutines.
// A failing source is logged and left empty; the rest is still returned.
func (s *DashboardService) GetDashboardData(ctx context.Context) (domain.DashboardData, error) {
	var (
		weather domain.Weather
		air     domain.AirQuality
		stats   *domain.NetworkStats
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
	)
	lat, lon := s.location.Latitude, s.location.Longitude

	wg.Add(3)
	go func() {
		defer wg.Done()
		w, err := s.weatherSvc.GetCurrentWeather(ctx, lat, lon, s.location.Name)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		weather = w
	}()

	go func() {
		defer wg.Done()
		a, err := s.airSvc.GetCurrent(ctx, lat, lon)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		air = a
	}()

	go func() {
		defer wg.Done()
		snap, err := s.trafficSvc.Status(ctx, nil, nil, false)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		st := snap.Stats
		stats = &st
	}()

	wg.Wait()

	for _, err := range errs {
		log.Printf("dashboard: data fetch error: %v", err)
	}

	if weather.Current != nil {
		s.saveWeather(weather)
	}

	return domain.DashboardData{
		Weather:    weather,
		AirQuality: air,
		Traffic:    stats,
		Timestamp:  time.Now(),
	}, nil
}

// saveWeather persists the reading asynchronously (tracked for graceful shutdown)
func (s *DashboardService) saveWeather(w domain.Weather) {
	if s.repo == nil {
		return
	}
	record := domain.WeatherRecord{
		City:      w.Location.Name,
		Latitude:  w.Location.Latitude,
		Longitude: w.Location.Longitude,
		TempC:     w.Current.TempC,
		Humidity:  w.Current.Humidity,
		Pressure:  w.Current.Pressure,
		WindKph:   w.Current.WindKph,
		Condition: w.Current.Condition,
		IsMock:    w.IsMock,
		Timestamp: w.Current.LastUpdated,
	}

	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SaveWeatherRecord(bgCtx, record); err != nil {
			log.Printf("dashboard: failed to save weather data: %v", err)
		}
	}()
}
