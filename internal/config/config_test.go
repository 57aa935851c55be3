package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_POLICY", "")
	t.Setenv("TRAFFIC_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, PolicyFallback, cfg.UpstreamPolicy)
	assert.Equal(t, 5*time.Minute, cfg.TrafficCacheTTL)
	assert.InDelta(t, 51.5074, cfg.DefaultLat, 1e-9)
	assert.False(t, cfg.StrictUpstream())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("UPSTREAM_POLICY", "Strict")
	t.Setenv("TRAFFIC_CACHE_TTL", "90s")
	t.Setenv("DEFAULT_LAT", "43.2389")
	t.Setenv("HOLIDAYS", "2026-12-25, 2026-12-26")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.StrictUpstream())
	assert.Equal(t, 90*time.Second, cfg.TrafficCacheTTL)
	assert.InDelta(t, 43.2389, cfg.DefaultLat, 1e-9)

	dates, err := cfg.HolidayDates()
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, time.December, dates[0].Month())
}

func TestValidateRejectsUnknownPolicy(t *testing.T) {
	cfg := &Config{UpstreamPolicy: "retry", TrafficCacheTTL: time.Minute}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadHoliday(t *testing.T) {
	cfg := &Config{UpstreamPolicy: PolicyFallback, TrafficCacheTTL: time.Minute, Holidays: "25/12/2026"}
	assert.Error(t, cfg.Validate())
}

func TestKeyTreatsPlaceholdersAsUnset(t *testing.T) {
	assert.Equal(t, "", Key("your_gemini_api_key"))
	assert.Equal(t, "real", Key(" real "))
}
