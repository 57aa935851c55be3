package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	tomtomBaseURL      = "https://api.tomtom.com"
	tomtomSearchRadius = 10000 // metres
	tomtomFields       = "{incidents{type,geometry{type,coordinates},properties{iconCategory,magnitudeOfDelay,events{description,code,iconCategory},startTime,endTime,from,to,length,delay,roadNumbers,timeValidity}}}"
)

// TomTom icon categories we map onto incident types
const (
	iconAccident          = 1
	iconLaneClosed        = 7
	iconRoadClosed        = 8
	iconRoadWorks         = 9
	iconBrokenDownVehicle = 14
)

// TomTomAdapter fetches live flow and incident data and reshapes it into a snapshot
type TomTomAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	series     *SeriesSynthesizer
}

// NewTomTomAdapter creates an adapter. An empty key disables it.
func NewTomTomAdapter(apiKey string, series *SeriesSynthesizer) *TomTomAdapter {
	return &TomTomAdapter{
		apiKey:  apiKey,
		baseURL: tomtomBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		series: series,
	}
}

// WithBaseURL points the adapter at another host (used by tests)
func (a *TomTomAdapter) WithBaseURL(baseURL string) *TomTomAdapter {
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

// Configured reports whether a key is present
func (a *TomTomAdapter) Configured() bool {
	return a != nil && a.apiKey != ""
}

// httpStatusError carries a non-2xx provider response
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type tomtomFlowResponse struct {
	FlowSegmentData *struct {
		FRC               string  `json:"frc"`
		CurrentSpeed      float64 `json:"currentSpeed"`
		FreeFlowSpeed     float64 `json:"freeFlowSpeed"`
		CurrentTravelTime float64 `json:"currentTravelTime"`
		RoadName          string  `json:"roadName"`
		Coordinates       struct {
			Coordinate []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"coordinate"`
		} `json:"coordinates"`
	} `json:"flowSegmentData"`
}

type tomtomIncidentsResponse struct {
	Incidents []struct {
		Geometry *struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
		Properties *struct {
			IconCategory     int  `json:"iconCategory"`
			MagnitudeOfDelay *int `json:"magnitudeOfDelay"`
			Events           []struct {
				Description  string `json:"description"`
				IconCategory int    `json:"iconCategory"`
			} `json:"events"`
			StartTime   *time.Time `json:"startTime"`
			EndTime     *time.Time `json:"endTime"`
			From        string     `json:"from"`
			To          string     `json:"to"`
			Delay       float64    `json:"delay"`
			RoadNumbers []string   `json:"roadNumbers"`
		} `json:"properties"`
	} `json:"incidents"`
}

// Fetch calls the incident and flow endpoints in turn and builds a live snapshot.
// Any failure is reported as ErrUpstreamUnavailable.
func (a *TomTomAdapter) Fetch(ctx context.Context, lat, lon float64, now time.Time) (*domain.NetworkSnapshot, error) {
	if !a.Configured() {
		return nil, fmt.Errorf("tomtom: no api key: %w", ErrUpstreamUnavailable)
	}

	point := fmt.Sprintf("%f,%f", lat, lon)

	var incidents tomtomIncidentsResponse
	if err := a.getJSON(ctx, "/traffic/services/5/incidentDetails", url.Values{
		"key":            {a.apiKey},
		"point":          {point},
		"radius":         {fmt.Sprint(tomtomSearchRadius)},
		"fields":         {tomtomFields},
		"language":       {"en-US"},
		"categoryFilter": {"0,1,2,3,4,5,6,7,8,9,10,11"},
	}, &incidents); err != nil {
		return nil, fmt.Errorf("tomtom: failed to fetch incidents: %w: %w", ErrUpstreamUnavailable, err)
	}

	var flow tomtomFlowResponse
	if err := a.getJSON(ctx, "/traffic/services/4/flowSegmentData/absolute/10/json", url.Values{
		"key":   {a.apiKey},
		"point": {point},
		"unit":  {"kmph"},
	}, &flow); err != nil {
		return nil, fmt.Errorf("tomtom: failed to fetch flow: %w: %w", ErrUpstreamUnavailable, err)
	}

	if flow.FlowSegmentData == nil {
		return nil, fmt.Errorf("tomtom: flow response has no segment data: %w", ErrUpstreamUnavailable)
	}

	return a.reshape(flow, incidents, domain.Coordinates{Latitude: lat, Longitude: lon}, now), nil
}

func (a *TomTomAdapter) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (a *TomTomAdapter) reshape(flow tomtomFlowResponse, incidents tomtomIncidentsResponse, center domain.Coordinates, now time.Time) *domain.NetworkSnapshot {
	seg := flow.FlowSegmentData
	weekday := domain.MondayWeekday(now)

	score := utils.RoundTo(LiveCongestion(seg.CurrentSpeed, seg.FreeFlowSpeed), 1)

	name := seg.RoadName
	if name == "" {
		name = "Unknown Road"
	}

	coords := domain.Segment{
		Start: center,
		End:   domain.Coordinates{Latitude: center.Latitude + 0.01, Longitude: center.Longitude + 0.01},
	}
	if pts := seg.Coordinates.Coordinate; len(pts) >= 2 {
		coords.Start = domain.Coordinates{Latitude: pts[0].Latitude, Longitude: pts[0].Longitude}
		last := pts[len(pts)-1]
		coords.End = domain.Coordinates{Latitude: last.Latitude, Longitude: last.Longitude}
	}

	// TomTom does not report capacity, so live roads are modelled as mid-sized
	const liveCapacity, liveBaseline = 3, 50
	road := domain.Road{
		ID:                "road-live-1",
		Name:              name,
		Capacity:          liveCapacity,
		CongestionScore:   score,
		CongestionLevel:   domain.LevelFor(score),
		AverageSpeed:      seg.CurrentSpeed,
		FreeFlowSpeed:     seg.FreeFlowSpeed,
		TravelTimeMinutes: utils.RoundTo(seg.CurrentTravelTime/60, 1),
		Coordinates:       coords,
		History:           slices.Collect(a.series.History(now, liveBaseline, liveCapacity)),
		Prediction:        slices.Collect(a.series.Prediction(now, liveBaseline, liveCapacity, weekday)),
	}
	roads := []domain.Road{road}

	out := make([]domain.Incident, 0, len(incidents.Incidents))
	for _, inc := range incidents.Incidents {
		props := inc.Properties
		if props == nil {
			continue
		}

		incident := domain.Incident{
			ID:               fmt.Sprintf("incident-%d", len(out)+1),
			Type:             incidentType(props.IconCategory),
			Severity:         domain.SeverityMedium,
			DelayMinutes:     utils.RoundTo(props.Delay/60, 1),
			RoadID:           road.ID,
			RoadName:         props.From,
			Description:      "Traffic incident",
			Coordinates:      center,
			StartTime:        props.StartTime,
			EstimatedEndTime: props.EndTime,
			Status:           "active",
		}

		if props.MagnitudeOfDelay != nil {
			switch m := *props.MagnitudeOfDelay; {
			case m <= 2:
				incident.Severity = domain.SeverityLow
			case m >= 4:
				incident.Severity = domain.SeverityHigh
			}
		}
		if len(props.Events) > 0 {
			if props.Events[0].IconCategory != 0 {
				incident.Type = incidentType(props.Events[0].IconCategory)
			}
			if props.Events[0].Description != "" {
				incident.Description = props.Events[0].Description
			}
		}
		switch {
		case props.To != "":
			incident.RoadName = strings.TrimSpace(props.From + " to " + props.To)
		case len(props.RoadNumbers) > 0:
			incident.RoadName = props.RoadNumbers[0]
		}
		if inc.Geometry != nil {
			if c, ok := firstCoordinate(inc.Geometry.Coordinates); ok {
				incident.Coordinates = c
			}
		}

		out = append(out, incident)
	}

	return &domain.NetworkSnapshot{
		ID:        uuid.New(),
		Timestamp: now,
		Center:    center,
		Roads:     roads,
		Junctions: []domain.Junction{},
		Incidents: out,
		Stats:     computeStats(roads, out, now.Hour()),
		Source:    domain.SourceLive,
	}
}

// LiveCongestion converts speeds into a 0-100 score; an unknown free-flow speed scores 0
func LiveCongestion(currentSpeed, freeFlowSpeed float64) float64 {
	if freeFlowSpeed <= 0 {
		return 0
	}
	return utils.ClampScore(100 * (1 - currentSpeed/freeFlowSpeed))
}

func incidentType(iconCategory int) string {
	switch iconCategory {
	case iconAccident:
		return domain.IncidentAccident
	case iconRoadWorks:
		return domain.IncidentConstruction
	case iconLaneClosed, iconRoadClosed:
		return domain.IncidentRoadClosure
	case iconBrokenDownVehicle:
		return domain.IncidentDisabledVehicle
	default:
		return domain.IncidentEvent
	}
}

// firstCoordinate reads a GeoJSON Point or LineString ([lon, lat] order)
func firstCoordinate(raw json.RawMessage) (domain.Coordinates, bool) {
	var line [][]float64
	if err := json.Unmarshal(raw, &line); err == nil && len(line) > 0 && len(line[0]) >= 2 {
		return domain.Coordinates{Latitude: line[0][1], Longitude: line[0][0]}, true
	}
	var pt []float64
	if err := json.Unmarshal(raw, &pt); err == nil && len(pt) >= 2 {
		return domain.Coordinates{Latitude: pt[1], Longitude: pt[0]}, true
	}
	return domain.Coordinates{}, false
}
