package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/internal/repository/memory"
)

type trafficFixture struct {
	svc   *TrafficService
	repo  *memory.Repository
	clock *manualClock
}

func newTrafficFixture(t *testing.T, live *TomTomAdapter, strict bool) *trafficFixture {
	t.Helper()
	s, e := newTestSynthesizer(t, 77)
	clock := newManualClock(testNow)
	repo := memory.NewRepository(0)

	svc := NewTrafficService(TrafficServiceConfig{
		Estimator:  e,
		Builder:    NewNetworkBuilder(e, s, s.rng, neverHoliday),
		Live:       live,
		Repo:       repo,
		Policy:     UpstreamPolicy{Strict: strict},
		Now:        clock.Now,
		DefaultLat: 51.5,
		DefaultLon: -0.12,
	})
	return &trafficFixture{svc: svc, repo: repo, clock: clock}
}

func brokenAdapter(t *testing.T) *TomTomAdapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	s, _ := newTestSynthesizer(t, 78)
	return NewTomTomAdapter("test-key", s).WithBaseURL(srv.URL)
}

func TestStatusSynthesizesWithoutKey(t *testing.T) {
	f := newTrafficFixture(t, NewTomTomAdapter("", nil), false)

	snap, err := f.svc.Status(context.Background(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSynthetic, snap.Source)
	assert.InDelta(t, 51.5, snap.Center.Latitude, 1e-9)
	assert.Len(t, snap.Roads, RoadCount)
}

func TestStatusUsesRequestedCentre(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	lat, lon := 43.24, 76.89

	snap, err := f.svc.Status(context.Background(), &lat, &lon, false)
	require.NoError(t, err)
	assert.InDelta(t, lat, snap.Center.Latitude, 1e-9)
	assert.InDelta(t, lon, snap.Center.Longitude, 1e-9)
}

func TestStatusFallsBackWhenProviderFails(t *testing.T) {
	f := newTrafficFixture(t, brokenAdapter(t), false)

	snap, err := f.svc.Status(context.Background(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceSynthetic, snap.Source)
}

func TestStatusStrictSurfacesProviderFailure(t *testing.T) {
	f := newTrafficFixture(t, brokenAdapter(t), true)

	_, err := f.svc.Status(context.Background(), nil, nil, false)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestStatusIsCached(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	first, err := f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)
	second, err := f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	refreshed, err := f.svc.Status(ctx, nil, nil, true)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, refreshed.ID)
	assert.True(t, refreshed.Timestamp.After(first.Timestamp))
}

func TestStatusArchivesFreshSnapshots(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	snap, err := f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)
	_, err = f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)
	f.svc.WaitBackground()

	history, err := f.svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, snap.ID, history[0].SnapshotID)
	assert.Equal(t, snap.Timestamp, history[0].Timestamp)
	assert.Equal(t, snap.Stats.TotalIncidents, history[0].TotalIncidents)
}

func TestRoadLookup(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	road, err := f.svc.Road(ctx, "road-3")
	require.NoError(t, err)
	assert.Equal(t, "Park Road", road.Name)

	_, err = f.svc.Road(ctx, "road-99")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestSubViewsShareSnapshot(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	snap, err := f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)

	roads, err := f.svc.Roads(ctx, nil, nil)
	require.NoError(t, err)
	junctions, err := f.svc.Junctions(ctx, nil, nil)
	require.NoError(t, err)
	incidents, err := f.svc.Incidents(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, snap.Roads, roads)
	assert.Equal(t, snap.Junctions, junctions)
	assert.Equal(t, snap.Incidents, incidents)
}

func TestPrediction(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	for _, bad := range []int{0, -1, 13} {
		_, err := f.svc.Prediction(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidInput, "hours_ahead=%d", bad)
	}

	snap, err := f.svc.Status(ctx, nil, nil, false)
	require.NoError(t, err)

	pred, err := f.svc.Prediction(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, pred.HoursAhead)
	assert.Equal(t, testNow.Add(2*time.Hour), pred.Timestamp)
	require.Len(t, pred.Predictions, len(snap.Roads))
	for i, p := range pred.Predictions {
		assert.Equal(t, snap.Roads[i].ID, p.RoadID)
		assert.Equal(t, snap.Roads[i].Prediction[1].CongestionScore, p.CongestionScore)
	}

	last, err := f.svc.Prediction(ctx, MaxHoursAhead)
	require.NoError(t, err)
	assert.Equal(t, snap.Roads[0].Prediction[11].CongestionScore, last.Predictions[0].CongestionScore)
}

func TestModelInfo(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	info := f.svc.Model()
	assert.True(t, info.Trained)
	assert.Contains(t, info.Weights, "baseline_traffic")
}

func TestHistoryRejectsOutOfRangeHours(t *testing.T) {
	f := newTrafficFixture(t, nil, false)
	ctx := context.Background()

	for _, hours := range []int{0, -1, MaxHistoryHours + 1} {
		_, err := f.svc.History(ctx, hours)
		require.ErrorIs(t, err, ErrInvalidInput, "hours %d", hours)
		assert.EqualError(t, err, "Hours must be between 1 and 720")
	}

	history, err := f.svc.History(ctx, MaxHistoryHours)
	require.NoError(t, err)
	assert.Empty(t, history)
}
