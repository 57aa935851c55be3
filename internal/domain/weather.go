package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// Location identifies the place a reading belongs to
type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Point converts the location into an orb point (lon, lat order)
func (l Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// CurrentWeather is the latest observation for a location
type CurrentWeather struct {
	TempC           float64   `json:"temp_c"`
	FeelsLikeC      float64   `json:"feels_like_c"`
	Humidity        int       `json:"humidity"`
	Pressure        int       `json:"pressure"`
	WindKph         float64   `json:"wind_kph"`
	Condition       string    `json:"condition"`
	Description     string    `json:"description,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	VisibilityKm    float64   `json:"visibility_km,omitempty"`
	PrecipitationMm float64   `json:"precipitation_mm,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
}

// ForecastDay is one day of a multi-day forecast
type ForecastDay struct {
	Date         string  `json:"date"`
	MaxTempC     float64 `json:"max_temp_c"`
	MinTempC     float64 `json:"min_temp_c"`
	Condition    string  `json:"condition"`
	ChanceOfRain int     `json:"chance_of_rain"`
}

// Weather represents weather data for a location
type Weather struct {
	Location Location        `json:"location"`
	Current  *CurrentWeather `json:"current,omitempty"`
	Forecast []ForecastDay   `json:"forecast,omitempty"`
	IsMock   bool            `json:"is_mock"`
}
