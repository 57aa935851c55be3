package domain

import "time"

// AirQualityReading is the latest air quality measurement for a location
type AirQualityReading struct {
	AQI         int                `json:"aqi"`
	Level       string             `json:"level"`
	Color       string             `json:"color"`
	Pollutants  map[string]float64 `json:"pollutants"`
	LastUpdated time.Time          `json:"last_updated"`
}

// AQIHistoryPoint is one daily AQI value
type AQIHistoryPoint struct {
	Date string `json:"date"`
	AQI  int    `json:"aqi"`
}

// AirQuality wraps the current reading and recent history
type AirQuality struct {
	Location Location          `json:"location"`
	Current  AirQualityReading `json:"current"`
	History  []AQIHistoryPoint `json:"history,omitempty"`
	IsMock   bool              `json:"is_mock"`
}
