package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const openAQBaseURL = "https://api.openaq.org"

// AirQualityService serves air quality readings from OpenAQ or synthetic data
type AirQualityService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	rng        RandomSource
	policy     UpstreamPolicy
	now        func() time.Time
}

// NewAirQualityService creates a new air quality service
func NewAirQualityService(apiKey string, rng RandomSource, policy UpstreamPolicy) *AirQualityService {
	return &AirQualityService{
		apiKey:  apiKey,
		baseURL: openAQBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng:    rng,
		policy: policy,
		now:    time.Now,
	}
}

// WithBaseURL points the service at another host (used by tests)
func (s *AirQualityService) WithBaseURL(baseURL string) *AirQualityService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type openAQLatestResponse struct {
	Results []struct {
		Location     string `json:"location"`
		Measurements []struct {
			Parameter   string    `json:"parameter"`
			Value       float64   `json:"value"`
			LastUpdated time.Time `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}

// AQIFromPM25 converts a PM2.5 concentration (µg/m³) into an AQI value and band
func AQIFromPM25(pm25 float64) (aqi int, level, color string) {
	switch {
	case pm25 <= 12:
		return int(pm25 * 4.17), "Good", "green"
	case pm25 <= 35.4:
		return int(50 + (pm25-12)*2.1), "Moderate", "yellow"
	case pm25 <= 55.4:
		return int(100 + (pm25-35.4)*2.5), "Unhealthy for Sensitive Groups", "orange"
	default:
		return int(150 + (pm25-55.4)*2.5), "Unhealthy", "red"
	}
}

// GetCurrent returns the latest reading near a point
func (s *AirQualityService) GetCurrent(ctx context.Context, lat, lon float64) (domain.AirQuality, error) {
	if s.apiKey == "" {
		return s.synthetic(lat, lon), nil
	}

	aq, err := s.fetchLatest(ctx, lat, lon)
	if err != nil {
		if s.policy.Strict {
			return domain.AirQuality{}, err
		}
		log.Printf("air quality: falling back to synthetic data: %v", err)
		return s.synthetic(lat, lon), nil
	}
	return aq, nil
}

// GetHistory returns a reading with a 7-day history. The provider's free tier has no
// history, so this is always synthetic.
func (s *AirQualityService) GetHistory(ctx context.Context, lat, lon float64) (domain.AirQuality, error) {
	return s.synthetic(lat, lon), nil
}

func (s *AirQualityService) fetchLatest(ctx context.Context, lat, lon float64) (domain.AirQuality, error) {
	params := url.Values{
		"coordinates": {fmt.Sprintf("%f,%f", lat, lon)},
		"radius":      {"10000"},
		"limit":       {"5"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v2/latest?"+params.Encode(), nil)
	if err != nil {
		return domain.AirQuality{}, fmt.Errorf("air quality: failed to create request: %w", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.AirQuality{}, fmt.Errorf("air quality: request failed: %w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AirQuality{}, fmt.Errorf("air quality: provider returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	var data openAQLatestResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return domain.AirQuality{}, fmt.Errorf("air quality: failed to decode response: %w: %w", ErrUpstreamUnavailable, err)
	}
	if len(data.Results) == 0 {
		return domain.AirQuality{}, fmt.Errorf("air quality: no stations near %f,%f: %w", lat, lon, ErrUpstreamUnavailable)
	}

	result := data.Results[0]
	reading := domain.AirQualityReading{
		Level:       "Unknown",
		Color:       "gray",
		Pollutants:  map[string]float64{},
		LastUpdated: s.now(),
	}
	for _, m := range result.Measurements {
		reading.Pollutants[strings.ToLower(m.Parameter)] = m.Value
		if !m.LastUpdated.IsZero() {
			reading.LastUpdated = m.LastUpdated
		}
	}
	if pm25, ok := reading.Pollutants["pm25"]; ok {
		reading.AQI, reading.Level, reading.Color = AQIFromPM25(pm25)
	}

	return domain.AirQuality{
		Location: domain.Location{Name: result.Location, Latitude: lat, Longitude: lon},
		Current:  reading,
	}, nil
}

func (s *AirQualityService) synthetic(lat, lon float64) domain.AirQuality {
	now := s.now()
	pm25 := utils.RoundTo(uniform(s.rng, 5, 35), 1)
	aqi, level, color := AQIFromPM25(pm25)

	history := make([]domain.AQIHistoryPoint, 0, 7)
	for i := 1; i <= 7; i++ {
		history = append(history, domain.AQIHistoryPoint{
			Date: now.AddDate(0, 0, -i).Format(time.DateOnly),
			AQI:  int(float64(aqi) * (1 + uniform(s.rng, -0.2, 0.2))),
		})
	}

	return domain.AirQuality{
		Location: domain.Location{Latitude: lat, Longitude: lon},
		Current: domain.AirQualityReading{
			AQI:   aqi,
			Level: level,
			Color: color,
			Pollutants: map[string]float64{
				"pm25": pm25,
				"pm10": utils.RoundTo(uniform(s.rng, 10, 50), 1),
				"o3":   utils.RoundTo(uniform(s.rng, 20, 80), 1),
				"no2":  utils.RoundTo(uniform(s.rng, 10, 60), 1),
				"so2":  utils.RoundTo(uniform(s.rng, 5, 30), 1),
				"co":   utils.RoundTo(uniform(s.rng, 0.5, 5), 1),
			},
			LastUpdated: now,
		},
		History: history,
		IsMock:  true,
	}
}
