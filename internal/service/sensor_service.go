package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	openSenseMapBaseURL = "https://api.opensensemap.org"
	sensorHistoryHours  = 24
	sensorSpread        = 0.01
)

// sensorKind describes one synthetic device and how to draw its readings
type sensorKind struct {
	name     string
	category string
	readings func(rng RandomSource) map[string]float64
	// integer-valued readings are scaled and truncated in history samples
	counters map[string]bool
}

var sensorKinds = []sensorKind{
	{
		name:     "Temperature & Humidity Sensor",
		category: "Environmental",
		readings: func(rng RandomSource) map[string]float64 {
			return map[string]float64{
				"temperature": utils.RoundTo(uniform(rng, 15, 25), 1),
				"humidity":    utils.RoundTo(uniform(rng, 30, 80), 1),
			}
		},
	},
	{
		name:     "Air Quality Monitor",
		category: "Environmental",
		readings: func(rng RandomSource) map[string]float64 {
			return map[string]float64{
				"pm25": utils.RoundTo(uniform(rng, 5, 35), 1),
				"pm10": utils.RoundTo(uniform(rng, 10, 50), 1),
			}
		},
	},
	{
		name:     "Noise Level Sensor",
		category: "Environmental",
		readings: func(rng RandomSource) map[string]float64 {
			return map[string]float64{"db_level": utils.RoundTo(uniform(rng, 40, 90), 1)}
		},
	},
	{
		name:     "Traffic Flow Counter",
		category: "Traffic",
		readings: func(rng RandomSource) map[string]float64 {
			return map[string]float64{
				"vehicles_per_hour": float64(randInt(rng, 50, 1000)),
				"average_speed":     utils.RoundTo(uniform(rng, 20, 60), 1),
			}
		},
		counters: map[string]bool{"vehicles_per_hour": true},
	},
	{
		name:     "Parking Space Monitor",
		category: "Urban",
		readings: func(rng RandomSource) map[string]float64 {
			total := randInt(rng, 20, 50)
			occupied := randInt(rng, 0, total)
			return map[string]float64{
				"spaces_total":     float64(total),
				"spaces_occupied":  float64(occupied),
				"spaces_available": float64(total - occupied),
			}
		},
		counters: map[string]bool{"spaces_total": true, "spaces_occupied": true, "spaces_available": true},
	},
}

// SensorService lists city sensors from openSenseMap when configured and keeps a
// synthetic set around the city centre for detail lookups.
type SensorService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	rng        RandomSource
	policy     UpstreamPolicy
	now        func() time.Time

	centerLat float64
	centerLon float64

	mu      sync.RWMutex
	seed    sync.Once
	sensors []domain.Sensor
}

// NewSensorService creates a sensor service centred on the given point
func NewSensorService(apiKey string, rng RandomSource, policy UpstreamPolicy, centerLat, centerLon float64) *SensorService {
	return &SensorService{
		apiKey:  apiKey,
		baseURL: openSenseMapBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng:       rng,
		policy:    policy,
		now:       time.Now,
		centerLat: centerLat,
		centerLon: centerLon,
	}
}

// WithBaseURL points the service at another host (used by tests)
func (s *SensorService) WithBaseURL(baseURL string) *SensorService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type openSenseBox struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	UpdatedAt       string `json:"updatedAt"`
	CurrentLocation struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"currentLocation"`
	Sensors []struct {
		Title           string `json:"title"`
		LastMeasurement *struct {
			Value string `json:"value"`
		} `json:"lastMeasurement"`
	} `json:"sensors"`
}

// List returns sensors near a point
func (s *SensorService) List(ctx context.Context, lat, lon float64) (domain.SensorList, error) {
	if s.apiKey != "" {
		sensors, err := s.fetchBoxes(ctx, lat, lon)
		if err == nil {
			return domain.SensorList{Count: len(sensors), Sensors: sensors}, nil
		}
		if s.policy.Strict {
			return domain.SensorList{}, err
		}
		log.Printf("sensors: falling back to synthetic data: %v", err)
	}

	sensors := s.snapshot()
	return domain.SensorList{Count: len(sensors), Sensors: sensors, IsMock: true}, nil
}

// Get returns one synthetic sensor by id
func (s *SensorService) Get(ctx context.Context, id string) (domain.Sensor, error) {
	for _, sensor := range s.snapshot() {
		if sensor.ID == id {
			return sensor, nil
		}
	}
	return domain.Sensor{}, notFoundf("Sensor %s not found", id)
}

func (s *SensorService) snapshot() []domain.Sensor {
	s.seed.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.sensors = s.generate()
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sensor, len(s.sensors))
	copy(out, s.sensors)
	return out
}

func (s *SensorService) generate() []domain.Sensor {
	now := s.now()
	sensors := make([]domain.Sensor, 0, len(sensorKinds))

	for i, kind := range sensorKinds {
		readings := kind.readings(s.rng)

		history := make([]domain.SensorSample, 0, sensorHistoryHours)
		for h := 0; h < sensorHistoryHours; h++ {
			values := make(map[string]float64, len(readings))
			for key, value := range readings {
				switch {
				case kind.counters[key]:
					values[key] = float64(int(value * uniform(s.rng, 0.8, 1.2)))
				case key == "temperature":
					values[key] = utils.RoundTo(value+uniform(s.rng, -3, 3), 1)
				default:
					values[key] = utils.RoundTo(value*uniform(s.rng, 0.8, 1.2), 1)
				}
			}
			history = append(history, domain.SensorSample{
				Timestamp: now.Add(-time.Duration(h) * time.Hour),
				Values:    values,
			})
		}

		sensors = append(sensors, domain.Sensor{
			ID:   fmt.Sprintf("sensor-%d", i+1),
			Name: kind.name,
			Type: kind.category,
			Location: domain.Location{
				Latitude:  s.centerLat + uniform(s.rng, -sensorSpread, sensorSpread),
				Longitude: s.centerLon + uniform(s.rng, -sensorSpread, sensorSpread),
			},
			Status:      "active",
			Battery:     randInt(s.rng, 50, 100),
			LastUpdated: now,
			Readings:    readings,
			History:     history,
		})
	}
	return sensors
}

func (s *SensorService) fetchBoxes(ctx context.Context, lat, lon float64) ([]domain.Sensor, error) {
	params := url.Values{
		// openSenseMap takes lon,lat
		"near":        {fmt.Sprintf("%f,%f", lon, lat)},
		"maxDistance": {"5000"},
		"limit":       {"10"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/boxes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sensors: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sensors: request failed: %w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sensors: provider returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	var boxes []openSenseBox
	if err := json.NewDecoder(resp.Body).Decode(&boxes); err != nil {
		return nil, fmt.Errorf("sensors: failed to decode response: %w: %w", ErrUpstreamUnavailable, err)
	}

	now := s.now()
	sensors := make([]domain.Sensor, 0, len(boxes))
	for _, box := range boxes {
		sensor := domain.Sensor{
			ID:          orDefault(box.ID, "unknown"),
			Name:        orDefault(box.Name, "Unknown Sensor"),
			Type:        "Environmental",
			Status:      "active",
			LastUpdated: now,
			Readings:    map[string]float64{},
		}
		if c := box.CurrentLocation.Coordinates; len(c) >= 2 {
			sensor.Location = domain.Location{Latitude: c[1], Longitude: c[0]}
		}
		if t, err := time.Parse(time.RFC3339, box.UpdatedAt); err == nil {
			sensor.LastUpdated = t
		}

		for _, m := range box.Sensors {
			if m.LastMeasurement == nil {
				continue
			}
			value, err := strconv.ParseFloat(m.LastMeasurement.Value, 64)
			if err != nil {
				continue
			}
			key := strings.ReplaceAll(strings.ToLower(orDefault(m.Title, "unknown")), " ", "_")
			sensor.Readings[key] = value
		}
		sensors = append(sensors, sensor)
	}
	return sensors, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
