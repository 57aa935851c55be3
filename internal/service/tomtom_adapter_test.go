package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
)

const (
	flowPath      = "/traffic/services/4/flowSegmentData/absolute/10/json"
	incidentsPath = "/traffic/services/5/incidentDetails"
)

const flowBody = `{
	"flowSegmentData": {
		"frc": "FRC2",
		"currentSpeed": 30,
		"freeFlowSpeed": 60,
		"currentTravelTime": 300,
		"roadName": "A4 Cromwell Road",
		"coordinates": {"coordinate": [
			{"latitude": 51.49, "longitude": -0.19},
			{"latitude": 51.50, "longitude": -0.17}
		]}
	}
}`

const incidentsBody = `{
	"incidents": [
		{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[-0.18, 51.495], [-0.17, 51.5]]},
			"properties": {
				"iconCategory": 1,
				"magnitudeOfDelay": 4,
				"events": [{"description": "Stationary traffic", "code": 108, "iconCategory": 1}],
				"startTime": "2026-10-14T07:50:00Z",
				"from": "Earls Court",
				"to": "Gloucester Road",
				"delay": 420
			}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-0.2, 51.48]},
			"properties": {
				"iconCategory": 9,
				"magnitudeOfDelay": 1,
				"roadNumbers": ["A3220"],
				"delay": 60
			}
		}
	]
}`

func newTomTomServer(t *testing.T, flow, incidents http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(flowPath, flow)
	mux.HandleFunc(incidentsPath, incidents)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func fail(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "provider error", code)
	}
}

func newTestAdapter(t *testing.T, srv *httptest.Server) *TomTomAdapter {
	t.Helper()
	s, _ := newTestSynthesizer(t, 31)
	return NewTomTomAdapter("test-key", s).WithBaseURL(srv.URL)
}

func TestTomTomFetch(t *testing.T) {
	var gotKey string
	srv := newTomTomServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		respond(flowBody)(w, r)
	}, respond(incidentsBody))

	snap, err := newTestAdapter(t, srv).Fetch(context.Background(), 51.5, -0.12, testNow)
	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)

	assert.Equal(t, domain.SourceLive, snap.Source)
	assert.NotNil(t, snap.Junctions)
	assert.Empty(t, snap.Junctions)

	require.Len(t, snap.Roads, 1)
	road := snap.Roads[0]
	assert.Equal(t, "A4 Cromwell Road", road.Name)
	assert.Equal(t, 50.0, road.CongestionScore)
	assert.Equal(t, domain.LevelModerate, road.CongestionLevel.Level)
	assert.Equal(t, 5.0, road.TravelTimeMinutes)
	assert.Len(t, road.History, 24)
	assert.Len(t, road.Prediction, 12)
	assert.InDelta(t, 51.49, road.Coordinates.Start.Latitude, 1e-9)

	require.Len(t, snap.Incidents, 2)
	accident := snap.Incidents[0]
	assert.Equal(t, domain.IncidentAccident, accident.Type)
	assert.Equal(t, domain.SeverityHigh, accident.Severity)
	assert.Equal(t, 7.0, accident.DelayMinutes)
	assert.Equal(t, "Earls Court to Gloucester Road", accident.RoadName)
	assert.Equal(t, "Stationary traffic", accident.Description)
	assert.InDelta(t, 51.495, accident.Coordinates.Latitude, 1e-9)
	require.NotNil(t, accident.StartTime)

	works := snap.Incidents[1]
	assert.Equal(t, domain.IncidentConstruction, works.Type)
	assert.Equal(t, domain.SeverityLow, works.Severity)
	assert.Equal(t, "A3220", works.RoadName)
	assert.InDelta(t, 51.48, works.Coordinates.Latitude, 1e-9)

	for _, inc := range snap.Incidents {
		assert.Equal(t, road.ID, inc.RoadID)
	}
	assert.Equal(t, 2, snap.Stats.TotalIncidents)
}

func TestTomTomFetchUnavailable(t *testing.T) {
	cases := map[string]*httptest.Server{
		"flow error":       newTomTomServer(t, fail(http.StatusInternalServerError), respond(incidentsBody)),
		"incidents error":  newTomTomServer(t, respond(flowBody), fail(http.StatusForbidden)),
		"no segment data":  newTomTomServer(t, respond(`{}`), respond(incidentsBody)),
		"malformed flow":   newTomTomServer(t, respond(`{"flowSegmentData":`), respond(incidentsBody)),
		"malformed events": newTomTomServer(t, respond(flowBody), respond(`[1,2`)),
	}

	for name, srv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newTestAdapter(t, srv).Fetch(context.Background(), 51.5, -0.12, testNow)
			assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		})
	}
}

func TestTomTomConfigured(t *testing.T) {
	assert.False(t, NewTomTomAdapter("", nil).Configured())
	assert.True(t, NewTomTomAdapter("k", nil).Configured())

	var nilAdapter *TomTomAdapter
	assert.False(t, nilAdapter.Configured())

	_, err := NewTomTomAdapter("", nil).Fetch(context.Background(), 0, 0, testNow)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestLiveCongestion(t *testing.T) {
	assert.Equal(t, 50.0, LiveCongestion(30, 60))
	assert.Equal(t, 100.0, LiveCongestion(0, 60))
	assert.Equal(t, 0.0, LiveCongestion(80, 60))
	assert.Equal(t, 0.0, LiveCongestion(30, 0))
}

func TestIncidentType(t *testing.T) {
	assert.Equal(t, domain.IncidentAccident, incidentType(1))
	assert.Equal(t, domain.IncidentRoadClosure, incidentType(7))
	assert.Equal(t, domain.IncidentRoadClosure, incidentType(8))
	assert.Equal(t, domain.IncidentConstruction, incidentType(9))
	assert.Equal(t, domain.IncidentDisabledVehicle, incidentType(14))
	assert.Equal(t, domain.IncidentEvent, incidentType(6))
}
