package utils

import (
	"math"
	"strings"
)

// Clamp limits a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampScore limits a congestion score to [0, 100]
func ClampScore(value float64) float64 {
	return Clamp(value, 0, 100)
}

// RoundTo rounds a float to specified decimal places
func RoundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// IsUnsetKey reports whether an API key is empty or still the sample placeholder
// ("your_tomtom_api_key" and friends from .env.example).
func IsUnsetKey(key string) bool {
	key = strings.TrimSpace(key)
	return key == "" || (strings.HasPrefix(key, "your_") && strings.HasSuffix(key, "_api_key"))
}
