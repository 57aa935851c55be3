package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const openWeatherBaseURL = "https://api.openweathermap.org"

var weatherConditions = []string{"Clear", "Clouds", "Rain", "Thunderstorm", "Snow", "Mist"}

// WeatherService handles weather data fetching
type WeatherService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	rng        RandomSource
	policy     UpstreamPolicy
	now        func() time.Time
	archive    DataRepository
}

// NewWeatherService creates a new weather service
func NewWeatherService(apiKey string, rng RandomSource, policy UpstreamPolicy) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		baseURL: openWeatherBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng:    rng,
		policy: policy,
		now:    time.Now,
	}
}

// WithBaseURL points the service at another host (used by tests)
func (s *WeatherService) WithBaseURL(baseURL string) *WeatherService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// WithArchive sets the repository History reads archived readings from
func (s *WeatherService) WithArchive(repo DataRepository) *WeatherService {
	s.archive = repo
	return s
}

// History returns archived weather readings for the last hours (1..MaxHistoryHours), newest first
func (s *WeatherService) History(ctx context.Context, hours int) ([]domain.WeatherRecord, error) {
	if err := checkHistoryHours(hours); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, errors.New("weather: no repository configured")
	}
	to := s.now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := s.archive.GetHistoricalWeather(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to load history: %w", err)
	}
	return data, nil
}

// OpenWeatherResponse represents the OpenWeatherMap current weather response
type OpenWeatherResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Visibility int    `json:"visibility"`
	Name       string `json:"name"`
}

// OpenWeatherForecastResponse represents the 5 day / 3 hour forecast response
type OpenWeatherForecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Pop float64 `json:"pop"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

// GetCurrentWeather fetches current weather for a location
func (s *WeatherService) GetCurrentWeather(ctx context.Context, lat, lon float64, city string) (domain.Weather, error) {
	// Return mock data if no API key
	if s.apiKey == "" {
		return s.getMockWeather(lat, lon, city), nil
	}

	var owResp OpenWeatherResponse
	if err := s.get(ctx, "/data/2.5/weather", lat, lon, &owResp); err != nil {
		return s.fallback(lat, lon, city, err)
	}

	current := &domain.CurrentWeather{
		TempC:           owResp.Main.Temp,
		FeelsLikeC:      owResp.Main.FeelsLike,
		Humidity:        owResp.Main.Humidity,
		Pressure:        owResp.Main.Pressure,
		WindKph:         utils.RoundTo(owResp.Wind.Speed*3.6, 1), // m/s to km/h
		VisibilityKm:    float64(owResp.Visibility) / 1000,
		PrecipitationMm: owResp.Rain.OneHour,
		LastUpdated:     s.now(),
	}
	if len(owResp.Weather) > 0 {
		current.Condition = owResp.Weather[0].Main
		current.Description = owResp.Weather[0].Description
		current.Icon = owResp.Weather[0].Icon
	}

	if city == "" {
		city = owResp.Name
	}

	return domain.Weather{
		Location: domain.Location{Name: city, Latitude: lat, Longitude: lon},
		Current:  current,
	}, nil
}

// GetForecast fetches a 5-day forecast, folding 3-hour steps into days
func (s *WeatherService) GetForecast(ctx context.Context, lat, lon float64, city string) (domain.Weather, error) {
	if s.apiKey == "" {
		return s.getMockWeather(lat, lon, city), nil
	}

	var fc OpenWeatherForecastResponse
	if err := s.get(ctx, "/data/2.5/forecast", lat, lon, &fc); err != nil {
		return s.fallback(lat, lon, city, err)
	}

	if city == "" {
		city = fc.City.Name
	}

	return domain.Weather{
		Location: domain.Location{Name: city, Latitude: lat, Longitude: lon},
		Forecast: foldForecast(fc),
	}, nil
}

func (s *WeatherService) get(ctx context.Context, path string, lat, lon float64, out any) error {
	params := url.Values{
		"lat":   {fmt.Sprintf("%f", lat)},
		"lon":   {fmt.Sprintf("%f", lon)},
		"appid": {s.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather: request failed: %w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: provider returned status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather: failed to decode response: %w: %w", ErrUpstreamUnavailable, err)
	}
	return nil
}

func (s *WeatherService) fallback(lat, lon float64, city string, err error) (domain.Weather, error) {
	if s.policy.Strict {
		return domain.Weather{}, err
	}
	log.Printf("weather: falling back to synthetic data: %v", err)
	return s.getMockWeather(lat, lon, city), nil
}

type forecastBucket struct {
	temps      []float64
	conditions map[string]int
	rainProb   float64
}

func foldForecast(fc OpenWeatherForecastResponse) []domain.ForecastDay {
	buckets := map[string]*forecastBucket{}
	var order []string

	for _, item := range fc.List {
		date, _, _ := strings.Cut(item.DtTxt, " ")
		b, ok := buckets[date]
		if !ok {
			b = &forecastBucket{conditions: map[string]int{}}
			buckets[date] = b
			order = append(order, date)
		}
		b.temps = append(b.temps, item.Main.Temp)
		if len(item.Weather) > 0 {
			b.conditions[item.Weather[0].Main]++
		}
		b.rainProb = max(b.rainProb, item.Pop*100)
	}

	sort.Strings(order)
	if len(order) > 5 {
		order = order[:5]
	}

	days := make([]domain.ForecastDay, 0, len(order))
	for _, date := range order {
		b := buckets[date]
		hi, lo := b.temps[0], b.temps[0]
		for _, t := range b.temps[1:] {
			hi = max(hi, t)
			lo = min(lo, t)
		}
		days = append(days, domain.ForecastDay{
			Date:         date,
			MaxTempC:     utils.RoundTo(hi, 1),
			MinTempC:     utils.RoundTo(lo, 1),
			Condition:    mostCommon(b.conditions),
			ChanceOfRain: int(b.rainProb + 0.5),
		})
	}
	return days
}

// mostCommon picks the highest count, breaking ties alphabetically
func mostCommon(counts map[string]int) string {
	best, bestN := "", -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// getMockWeather returns seasonal synthetic weather with a 5-day forecast
func (s *WeatherService) getMockWeather(lat, lon float64, city string) domain.Weather {
	now := s.now()

	var lo, hi float64
	switch month := now.Month(); {
	case month >= 3 && month <= 5: // Spring
		lo, hi = 10, 20
	case month >= 6 && month <= 8: // Summer
		lo, hi = 18, 30
	case month >= 9 && month <= 11: // Autumn
		lo, hi = 5, 15
	default: // Winter
		lo, hi = -5, 10
	}

	temp := utils.RoundTo(uniform(s.rng, lo, hi), 1)
	condition := pick(s.rng, weatherConditions)

	forecast := make([]domain.ForecastDay, 0, 5)
	for i := 1; i <= 5; i++ {
		rainChance := randInt(s.rng, 0, 30)
		c := pick(s.rng, weatherConditions)
		if c == "Rain" || c == "Thunderstorm" {
			rainChance = randInt(s.rng, 40, 100)
		}
		dayHi := utils.RoundTo(temp+uniform(s.rng, -1, 5), 1)
		dayLo := utils.RoundTo(temp+uniform(s.rng, -5, 1), 1)
		forecast = append(forecast, domain.ForecastDay{
			Date:         now.AddDate(0, 0, i).Format(time.DateOnly),
			MaxTempC:     max(dayHi, dayLo),
			MinTempC:     min(dayHi, dayLo),
			Condition:    c,
			ChanceOfRain: rainChance,
		})
	}

	return domain.Weather{
		Location: domain.Location{Name: city, Latitude: lat, Longitude: lon},
		Current: &domain.CurrentWeather{
			TempC:       temp,
			FeelsLikeC:  utils.RoundTo(temp+uniform(s.rng, -2, 2), 1),
			Humidity:    randInt(s.rng, 30, 95),
			Pressure:    randInt(s.rng, 995, 1025),
			WindKph:     utils.RoundTo(uniform(s.rng, 0, 15), 1),
			Condition:   condition,
			LastUpdated: now,
		},
		Forecast: forecast,
		IsMock:   true,
	}
}
