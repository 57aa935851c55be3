package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		score float64
		level string
		color string
	}{
		{0, LevelLow, "green"},
		{29.9, LevelLow, "green"},
		{30, LevelModerate, "yellow"},
		{59.9, LevelModerate, "yellow"},
		{60, LevelHigh, "orange"},
		{79.9, LevelHigh, "orange"},
		{80, LevelSevere, "red"},
		{100, LevelSevere, "red"},
	}

	for _, tc := range cases {
		got := LevelFor(tc.score)
		assert.Equal(t, tc.level, got.Level, "score %v", tc.score)
		assert.Equal(t, tc.color, got.Color, "score %v", tc.score)
	}
}

func TestDayPhase(t *testing.T) {
	assert.Equal(t, PhaseNight, DayPhase(4))
	assert.Equal(t, PhaseMorning, DayPhase(5))
	assert.Equal(t, PhaseMorning, DayPhase(11))
	assert.Equal(t, PhaseAfternoon, DayPhase(12))
	assert.Equal(t, PhaseAfternoon, DayPhase(16))
	assert.Equal(t, PhaseEvening, DayPhase(17))
	assert.Equal(t, PhaseEvening, DayPhase(20))
	assert.Equal(t, PhaseNight, DayPhase(21))
	assert.Equal(t, PhaseNight, DayPhase(0))
}

func TestMondayWeekday(t *testing.T) {
	// 2026-10-12 is a Monday
	monday := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, MondayWeekday(monday))
	assert.Equal(t, 5, MondayWeekday(monday.AddDate(0, 0, 5)))
	assert.Equal(t, 6, MondayWeekday(monday.AddDate(0, 0, 6)))
}

func TestSnapshotFindRoad(t *testing.T) {
	snap := &NetworkSnapshot{Roads: []Road{{ID: "road-1"}, {ID: "road-2", Name: "Oak Avenue"}}}

	road, ok := snap.FindRoad("road-2")
	assert.True(t, ok)
	assert.Equal(t, "Oak Avenue", road.Name)

	_, ok = snap.FindRoad("road-99")
	assert.False(t, ok)
}

func TestSegmentMidpoint(t *testing.T) {
	seg := Segment{
		Start: Coordinates{Latitude: 51.0, Longitude: -0.2},
		End:   Coordinates{Latitude: 51.2, Longitude: 0.0},
	}
	mid := seg.Midpoint()
	assert.InDelta(t, 51.1, mid.Latitude, 1e-9)
	assert.InDelta(t, -0.1, mid.Longitude, 1e-9)
}
