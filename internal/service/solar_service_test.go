package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolar(seed int64, isHoliday HolidayFunc) *SolarService {
	s := NewSolarService(testRand(seed), isHoliday)
	s.now = func() time.Time { return testNow }
	return s
}

func TestSeasonFor(t *testing.T) {
	cases := []struct {
		month time.Month
		lat   float64
		want  string
	}{
		{time.January, 51.5, "winter"},
		{time.April, 51.5, "spring"},
		{time.July, 51.5, "summer"},
		{time.October, 51.5, "autumn"},
		{time.December, 51.5, "winter"},
		{time.January, -33.9, "summer"},
		{time.April, -33.9, "autumn"},
		{time.July, -33.9, "winter"},
		{time.October, -33.9, "spring"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, seasonFor(tc.month, tc.lat).name, "%s at %v", tc.month, tc.lat)
	}
}

func TestSolarEstimate(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		est := newTestSolar(seed, nil).Estimate(context.Background(), 51.5, -0.12)

		assert.Equal(t, "autumn", est.Season)
		factor := -1.0
		for _, sky := range skyConditions {
			if sky.name == est.WeatherConditions {
				factor = sky.factor
			}
		}
		require.Positive(t, factor, est.WeatherConditions)
		base := seasonAutumn.radiation * seasonAutumn.cloudFactor * factor
		assert.GreaterOrEqual(t, est.DailyRadiation, base*0.9-0.01)
		assert.LessOrEqual(t, est.DailyRadiation, base*1.1+0.01)

		require.Len(t, est.Systems, len(SolarSystemSizes))
		for i, sys := range est.Systems {
			assert.Equal(t, SolarSystemSizes[i], sys.SizeKW)
			assert.Equal(t, float64(sys.SizeKW*installCostPerKW), sys.EstimatedSystemCost)
			assert.GreaterOrEqual(t, sys.PanelEfficiency, 18.0)
			assert.LessOrEqual(t, sys.PanelEfficiency, 22.0)
			if i > 0 {
				assert.Greater(t, sys.DailyProductionKWh, est.Systems[i-1].DailyProductionKWh)
			}

			require.Len(t, sys.HourlyData, 24)
			var total float64
			for hour, h := range sys.HourlyData {
				assert.Equal(t, hour, h.Timestamp.Hour())
				if hour <= 6 || hour >= 18 {
					assert.Zero(t, h.ProductionKWh, "hour %d", hour)
				}
				total += h.ProductionKWh
			}
			// the hourly curve adds up to the daily figure
			assert.InDelta(t, sys.DailyProductionKWh, total, 0.1*sys.DailyProductionKWh+0.06)
		}
	}
}

func TestSolarHistoryRejectsUnknownSize(t *testing.T) {
	_, err := newTestSolar(1, nil).History(context.Background(), 7, 51.5, -0.12)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.EqualError(t, err, "Invalid system size. Available sizes: 3, 5, 10, 15 kW")
}

func TestSolarHistory(t *testing.T) {
	h, err := newTestSolar(2, neverHoliday).History(context.Background(), 10, 51.5, -0.12)
	require.NoError(t, err)

	require.Len(t, h.History, solarHistoryDays)
	assert.Equal(t, testNow.AddDate(0, 0, -30).Format(time.DateOnly), h.History[0].Date)
	assert.Equal(t, testNow.AddDate(0, 0, -1).Format(time.DateOnly), h.History[29].Date)

	var produced float64
	for _, day := range h.History {
		assert.GreaterOrEqual(t, day.ProductionKWh, 24*0.5-0.01)
		assert.LessOrEqual(t, day.ProductionKWh, 40+0.01)
		assert.InDelta(t, day.ProductionKWh, day.SelfConsumedKWh+day.GridExportedKWh, 0.011)

		share := day.SelfConsumedKWh / day.ProductionKWh
		assert.GreaterOrEqual(t, share, 0.2-0.01)
		assert.LessOrEqual(t, share, 0.4+0.01)
		produced += day.ProductionKWh
	}
	assert.InDelta(t, produced, h.TotalProducedKWh, 0.011)
}

func TestSolarHistoryHolidaysConsumeMore(t *testing.T) {
	always := func(time.Time) bool { return true }
	h, err := newTestSolar(3, always).History(context.Background(), 3, 51.5, -0.12)
	require.NoError(t, err)

	for _, day := range h.History {
		share := day.SelfConsumedKWh / day.ProductionKWh
		assert.GreaterOrEqual(t, share, 0.4-0.01, day.Date)
		assert.LessOrEqual(t, share, 0.6+0.01, day.Date)
	}
}
