package domain

import (
	"context"
	"time"
)

// DashboardData aggregates all live monitoring data
type DashboardData struct {
	Weather    Weather       `json:"weather"`
	AirQuality AirQuality    `json:"air_quality"`
	Traffic    *NetworkStats `json:"traffic"`
	Timestamp  time.Time     `json:"timestamp"`
}

// WeatherRecord is the persisted form of a current weather reading
type WeatherRecord struct {
	City      string    `json:"city"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	TempC     float64   `json:"temp_c"`
	Humidity  int       `json:"humidity"`
	Pressure  int       `json:"pressure"`
	WindKph   float64   `json:"wind_kph"`
	Condition string    `json:"condition"`
	IsMock    bool      `json:"is_mock"`
	Timestamp time.Time `json:"timestamp"`
}

// DataRepository defines the interface for data persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// SaveTrafficSummary archives a snapshot digest
	SaveTrafficSummary(ctx context.Context, summary TrafficSummary) error

	// SaveWeatherRecord archives a weather reading
	SaveWeatherRecord(ctx context.Context, record WeatherRecord) error

	// GetHistoricalTraffic retrieves snapshot digests, newest first
	GetHistoricalTraffic(ctx context.Context, from, to time.Time) ([]TrafficSummary, error)

	// GetHistoricalWeather retrieves weather readings, newest first
	GetHistoricalWeather(ctx context.Context, from, to time.Time) ([]WeatherRecord, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
