package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Coordinates is a WGS84 position
type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Point converts the coordinates into an orb point (lon, lat order)
func (c Coordinates) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// Segment is the start and end of a road
type Segment struct {
	Start Coordinates `json:"start"`
	End   Coordinates `json:"end"`
}

// Midpoint returns the point halfway between start and end
func (s Segment) Midpoint() Coordinates {
	return Coordinates{
		Latitude:  (s.Start.Latitude + s.End.Latitude) / 2,
		Longitude: (s.Start.Longitude + s.End.Longitude) / 2,
	}
}

// CongestionLevel is the display bucket of a congestion score
type CongestionLevel struct {
	Level string `json:"level"`
	Color string `json:"color"`
}

// Congestion level names
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelSevere   = "severe"
)

// LevelFor buckets a score: <30 low, <60 moderate, <80 high, else severe
func LevelFor(score float64) CongestionLevel {
	switch {
	case score < 30:
		return CongestionLevel{Level: LevelLow, Color: "green"}
	case score < 60:
		return CongestionLevel{Level: LevelModerate, Color: "yellow"}
	case score < 80:
		return CongestionLevel{Level: LevelHigh, Color: "orange"}
	default:
		return CongestionLevel{Level: LevelSevere, Color: "red"}
	}
}

// FeatureVector is the input of the congestion estimator.
// Weekday counts from Monday (0) to Sunday (6).
type FeatureVector struct {
	Hour            int  `json:"hour"`
	Weekday         int  `json:"weekday"`
	IsHoliday       bool `json:"is_holiday"`
	RoadCapacity    int  `json:"road_capacity"`
	BaselineTraffic int  `json:"baseline_traffic"`
}

// MondayWeekday maps time.Weekday (Sunday = 0) onto a Monday-first index
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// SeriesPoint is one hourly sample of a road's history or prediction
type SeriesPoint struct {
	Timestamp       time.Time       `json:"timestamp"`
	CongestionScore float64         `json:"congestion_score"`
	CongestionLevel CongestionLevel `json:"congestion_level"`
}

// Road is a synthetic or live road segment
type Road struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Capacity          int             `json:"capacity"`
	CongestionScore   float64         `json:"congestion_score"`
	CongestionLevel   CongestionLevel `json:"congestion_level"`
	AverageSpeed      float64         `json:"average_speed"`
	FreeFlowSpeed     float64         `json:"free_flow_speed,omitempty"`
	LengthKm          float64         `json:"length_km"`
	TravelTimeMinutes float64         `json:"travel_time_mins"`
	Coordinates       Segment         `json:"coordinates"`
	History           []SeriesPoint   `json:"history"`
	Prediction        []SeriesPoint   `json:"prediction"`
}

// Junction types
const (
	JunctionTrafficLight = "traffic_light"
	JunctionRoundabout   = "roundabout"
	JunctionUncontrolled = "uncontrolled"
)

// Junction links roads by id; it does not own them
type Junction struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	Coordinates        Coordinates     `json:"coordinates"`
	ConnectedRoads     []string        `json:"connected_roads"`
	CongestionScore    float64         `json:"congestion_score"`
	CongestionLevel    CongestionLevel `json:"congestion_level"`
	AverageWaitSeconds int             `json:"average_wait_time_sec"`
}

// Incident types
const (
	IncidentAccident        = "accident"
	IncidentConstruction    = "construction"
	IncidentEvent           = "event"
	IncidentRoadClosure     = "road_closure"
	IncidentDisabledVehicle = "disabled_vehicle"
)

// Incident severities
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Incident represents a road event like an accident or roadwork
type Incident struct {
	ID               string      `json:"id"`
	Type             string      `json:"type"`
	Severity         string      `json:"severity"`
	DelayMinutes     float64     `json:"delay_mins"`
	RoadID           string      `json:"road_id"`
	RoadName         string      `json:"road_name"`
	Description      string      `json:"description"`
	Coordinates      Coordinates `json:"coordinates"`
	StartTime        *time.Time  `json:"start_time,omitempty"`
	EstimatedEndTime *time.Time  `json:"estimated_end_time,omitempty"`
	Status           string      `json:"status"`
}

// Day phases
const (
	PhaseMorning   = "morning"
	PhaseAfternoon = "afternoon"
	PhaseEvening   = "evening"
	PhaseNight     = "night"
)

// DayPhase buckets an hour: 5-11 morning, 12-16 afternoon, 17-20 evening, else night
func DayPhase(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return PhaseMorning
	case hour >= 12 && hour < 17:
		return PhaseAfternoon
	case hour >= 17 && hour < 21:
		return PhaseEvening
	default:
		return PhaseNight
	}
}

// NetworkStats aggregates a snapshot
type NetworkStats struct {
	AverageCongestion   float64 `json:"average_congestion"`
	HighCongestionAreas int     `json:"high_congestion_areas"`
	TotalIncidents      int     `json:"total_incidents"`
	DayPhase            string  `json:"day_phase"`
}

// Snapshot sources
const (
	SourceLive      = "TomTom API"
	SourceSynthetic = "Synthetic Data"
)

// NetworkSnapshot is one internally consistent view of the road network
type NetworkSnapshot struct {
	ID        uuid.UUID    `json:"id"`
	Timestamp time.Time    `json:"last_updated"`
	Center    Coordinates  `json:"center"`
	Roads     []Road       `json:"roads"`
	Junctions []Junction   `json:"junctions"`
	Incidents []Incident   `json:"incidents"`
	Stats     NetworkStats `json:"stats"`
	Source    string       `json:"source"`
}

// FindRoad looks up a road by id
func (s *NetworkSnapshot) FindRoad(id string) (Road, bool) {
	for _, r := range s.Roads {
		if r.ID == id {
			return r, true
		}
	}
	return Road{}, false
}

// Summary reduces the snapshot to its archived form
func (s *NetworkSnapshot) Summary() TrafficSummary {
	return TrafficSummary{
		SnapshotID:          s.ID,
		AverageCongestion:   s.Stats.AverageCongestion,
		HighCongestionAreas: s.Stats.HighCongestionAreas,
		TotalIncidents:      s.Stats.TotalIncidents,
		DayPhase:            s.Stats.DayPhase,
		Source:              s.Source,
		CenterLat:           s.Center.Latitude,
		CenterLon:           s.Center.Longitude,
		Timestamp:           s.Timestamp,
	}
}

// TrafficSummary is the persisted digest of a snapshot
type TrafficSummary struct {
	SnapshotID          uuid.UUID `json:"snapshot_id"`
	AverageCongestion   float64   `json:"average_congestion"`
	HighCongestionAreas int       `json:"high_congestion_areas"`
	TotalIncidents      int       `json:"total_incidents"`
	DayPhase            string    `json:"day_phase"`
	Source              string    `json:"source"`
	CenterLat           float64   `json:"center_lat"`
	CenterLon           float64   `json:"center_lon"`
	Timestamp           time.Time `json:"timestamp"`
}

// RoadPrediction is one road's forecast at a given horizon
type RoadPrediction struct {
	RoadID          string          `json:"road_id"`
	RoadName        string          `json:"road_name"`
	Timestamp       time.Time       `json:"timestamp"`
	CongestionScore float64         `json:"congestion_score"`
	CongestionLevel CongestionLevel `json:"congestion_level"`
}

// TrafficPrediction is the response of the prediction endpoint
type TrafficPrediction struct {
	Timestamp   time.Time        `json:"timestamp"`
	HoursAhead  int              `json:"hours_ahead"`
	Predictions []RoadPrediction `json:"predictions"`
}

// ModelInfo describes the fitted congestion model
type ModelInfo struct {
	Trained         bool               `json:"trained"`
	TrainingSamples int                `json:"training_samples"`
	Intercept       float64            `json:"intercept"`
	Weights         map[string]float64 `json:"weights"`
}
