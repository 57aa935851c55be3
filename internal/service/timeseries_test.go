package service

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

func newTestSynthesizer(t *testing.T, seed int64) (*SeriesSynthesizer, *CongestionEstimator) {
	t.Helper()
	rng := testRand(seed)
	e := NewCongestionEstimator(rng)
	require.NoError(t, e.Fit())
	return NewSeriesSynthesizer(e, rng, neverHoliday), e
}

func TestHistorySeries(t *testing.T) {
	s, _ := newTestSynthesizer(t, 1)

	points := slices.Collect(s.History(testNow, 60, 2))
	require.Len(t, points, 24)

	assert.Equal(t, testNow.Add(-24*time.Hour), points[0].Timestamp)
	assert.Equal(t, testNow.Add(-time.Hour), points[23].Timestamp)
	for i, p := range points {
		if i > 0 {
			assert.Equal(t, time.Hour, p.Timestamp.Sub(points[i-1].Timestamp))
		}
		assert.GreaterOrEqual(t, p.CongestionScore, 0.0)
		assert.LessOrEqual(t, p.CongestionScore, 100.0)
		assert.Equal(t, domain.LevelFor(p.CongestionScore), p.CongestionLevel)
	}
}

func TestHistoryIsRestartable(t *testing.T) {
	s, _ := newTestSynthesizer(t, 2)
	seq := s.History(testNow, 50, 3)

	assert.Len(t, slices.Collect(seq), 24)
	assert.Len(t, slices.Collect(seq), 24)
}

func TestHistoryStopsEarly(t *testing.T) {
	s, _ := newTestSynthesizer(t, 3)

	n := 0
	for range s.History(testNow, 50, 3) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestPredictionSeriesUsesEstimator(t *testing.T) {
	s, e := newTestSynthesizer(t, 4)
	weekday := domain.MondayWeekday(testNow)

	points := slices.Collect(s.Prediction(testNow, 55, 2, weekday))
	require.Len(t, points, 12)

	for i, p := range points {
		ts := testNow.Add(time.Duration(i+1) * time.Hour)
		assert.Equal(t, ts, p.Timestamp)

		want := e.Predict(domain.FeatureVector{
			Hour:            ts.Hour(),
			Weekday:         weekday,
			RoadCapacity:    2,
			BaselineTraffic: 55,
		})
		assert.Equal(t, utils.RoundTo(want, 1), p.CongestionScore)
		assert.Equal(t, domain.LevelFor(p.CongestionScore), p.CongestionLevel)
	}
}

func TestPredictionWeekdayAdvancesAtMidnight(t *testing.T) {
	s, e := newTestSynthesizer(t, 5)

	// Sunday 22:00; the third forward hour is Monday 01:00
	sunday := time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)
	require.Equal(t, 6, domain.MondayWeekday(sunday))

	points := slices.Collect(s.Prediction(sunday, 40, 4, 6))
	monday := points[2]
	require.Equal(t, 1, monday.Timestamp.Hour())

	want := e.Predict(domain.FeatureVector{Hour: 1, Weekday: 0, RoadCapacity: 4, BaselineTraffic: 40})
	assert.Equal(t, utils.RoundTo(want, 1), monday.CongestionScore)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, daysBetween(a, a.Add(30*time.Minute)))
	assert.Equal(t, 1, daysBetween(a, a.Add(2*time.Hour)))
	assert.Equal(t, 1, daysBetween(a, a.Add(12*time.Hour)))
}
