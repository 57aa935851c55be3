package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-12))
	assert.Equal(t, 100.0, ClampScore(140))
	assert.Equal(t, 42.5, ClampScore(42.5))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.3, RoundTo(12.34, 1))
	assert.Equal(t, 12.35, RoundTo(12.349, 2))
	assert.Equal(t, 12.0, RoundTo(12.4, 0))
}

func TestIsUnsetKey(t *testing.T) {
	assert.True(t, IsUnsetKey(""))
	assert.True(t, IsUnsetKey("  "))
	assert.True(t, IsUnsetKey("your_tomtom_api_key"))
	assert.True(t, IsUnsetKey("your_openweathermap_api_key"))
	assert.False(t, IsUnsetKey("abc123"))
}
