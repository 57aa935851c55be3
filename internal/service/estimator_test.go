package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
)

func TestEstimatorFit(t *testing.T) {
	e := NewCongestionEstimator(testRand(42))
	require.NoError(t, e.Fit())

	info := e.Info()
	assert.True(t, info.Trained)
	assert.Equal(t, TrainingSamples, info.TrainingSamples)
	require.Len(t, info.Weights, 5)

	// the labelling rule adds the baseline, takes 5 per capacity class and 15 on holidays
	assert.InDelta(t, 0.9, info.Weights["baseline_traffic"], 0.3)
	assert.Less(t, info.Weights["road_capacity"], -2.0)
	assert.Less(t, info.Weights["is_holiday"], -8.0)
}

func TestEstimatorFitIsIdempotent(t *testing.T) {
	e := NewCongestionEstimator(testRand(7))
	require.NoError(t, e.Fit())
	first := e.Info()

	require.NoError(t, e.Fit())
	assert.Equal(t, first, e.Info())
}

func TestEstimatorPredictTrainsLazily(t *testing.T) {
	e := NewCongestionEstimator(testRand(3))
	assert.False(t, e.Info().Trained)

	score := e.Predict(domain.FeatureVector{Hour: 8, Weekday: 1, RoadCapacity: 2, BaselineTraffic: 50})
	assert.True(t, e.Info().Trained)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestEstimatorPredictClamps(t *testing.T) {
	e := NewCongestionEstimator(testRand(11))
	require.NoError(t, e.Fit())

	high := e.Predict(domain.FeatureVector{Hour: 8, Weekday: 0, RoadCapacity: 1, BaselineTraffic: 400})
	low := e.Predict(domain.FeatureVector{Hour: 3, Weekday: 6, IsHoliday: true, RoadCapacity: 5, BaselineTraffic: -300})

	assert.Equal(t, 100.0, high)
	assert.Equal(t, 0.0, low)
}

func TestEstimatorPredictRespondsToFeatures(t *testing.T) {
	e := NewCongestionEstimator(testRand(5))
	require.NoError(t, e.Fit())

	base := domain.FeatureVector{Hour: 12, Weekday: 2, RoadCapacity: 3, BaselineTraffic: 50}
	busier := base
	busier.BaselineTraffic = 80
	holiday := base
	holiday.IsHoliday = true

	assert.Greater(t, e.Predict(busier), e.Predict(base))
	assert.Less(t, e.Predict(holiday), e.Predict(base))
}

func TestIsRushHour(t *testing.T) {
	for _, h := range []int{7, 8, 9, 16, 17, 18} {
		assert.True(t, isRushHour(h), "hour %d", h)
	}
	for _, h := range []int{0, 6, 10, 12, 15, 19, 23} {
		assert.False(t, isRushHour(h), "hour %d", h)
	}
}
