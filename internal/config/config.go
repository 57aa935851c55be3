package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartcity/cityapi/pkg/utils"
)

// Upstream policies
const (
	PolicyFallback = "fallback"
	PolicyStrict   = "strict"
)

// Config holds runtime settings sourced from the environment
type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"GO_ENV"`
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	TomTomAPIKey      string        `mapstructure:"TOMTOM_API_KEY"`
	OpenWeatherAPIKey string        `mapstructure:"OPENWEATHER_API_KEY"`
	OpenAQAPIKey      string        `mapstructure:"OPENAQ_API_KEY"`
	GeminiAPIKey      string        `mapstructure:"GEMINI_API_KEY"`
	OpenSenseMapKey   string        `mapstructure:"OPENSENSEMAP_API_KEY"`
	DefaultLat        float64       `mapstructure:"DEFAULT_LAT"`
	DefaultLon        float64       `mapstructure:"DEFAULT_LON"`
	DefaultCity       string        `mapstructure:"DEFAULT_CITY"`
	UpstreamPolicy    string        `mapstructure:"UPSTREAM_POLICY"`
	TrafficCacheTTL   time.Duration `mapstructure:"TRAFFIC_CACHE_TTL"`
	Holidays          string        `mapstructure:"HOLIDAYS"`
	RandomSeed        int64         `mapstructure:"RANDOM_SEED"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"GO_ENV":               "development",
	"DATABASE_URL":         "",
	"TOMTOM_API_KEY":       "",
	"OPENWEATHER_API_KEY":  "",
	"OPENAQ_API_KEY":       "",
	"GEMINI_API_KEY":       "",
	"OPENSENSEMAP_API_KEY": "",
	"DEFAULT_LAT":          51.5074,
	"DEFAULT_LON":          -0.1278,
	"DEFAULT_CITY":         "London",
	"UPSTREAM_POLICY":      PolicyFallback,
	"TRAFFIC_CACHE_TTL":    "5m",
	"HOLIDAYS":             "",
	"RANDOM_SEED":          0,
}

// Load reads .env (if any) and the process environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode environment: %w", err)
	}

	cfg.UpstreamPolicy = strings.ToLower(strings.TrimSpace(cfg.UpstreamPolicy))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch c.UpstreamPolicy {
	case PolicyFallback, PolicyStrict:
	default:
		return fmt.Errorf("config: UPSTREAM_POLICY must be %q or %q, got %q", PolicyFallback, PolicyStrict, c.UpstreamPolicy)
	}
	if c.TrafficCacheTTL <= 0 {
		return fmt.Errorf("config: TRAFFIC_CACHE_TTL must be positive, got %s", c.TrafficCacheTTL)
	}
	if c.DefaultLat < -90 || c.DefaultLat > 90 || c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("config: default coordinates out of range: %f,%f", c.DefaultLat, c.DefaultLon)
	}
	if _, err := c.HolidayDates(); err != nil {
		return err
	}
	return nil
}

// StrictUpstream reports whether provider failures should surface to clients
func (c *Config) StrictUpstream() bool {
	return c.UpstreamPolicy == PolicyStrict
}

// HolidayDates parses the comma-separated HOLIDAYS list (YYYY-MM-DD)
func (c *Config) HolidayDates() ([]time.Time, error) {
	var dates []time.Time
	for _, raw := range strings.Split(c.Holidays, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid holiday date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// Key returns the API key or "" when it is unset or a placeholder
func Key(value string) string {
	if utils.IsUnsetKey(value) {
		return ""
	}
	return strings.TrimSpace(value)
}
