package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/internal/service"
)

const healthTimeout = 2 * time.Second

// Services are the collaborators the HTTP layer delegates to
type Services struct {
	Traffic    *service.TrafficService
	Weather    *service.WeatherService
	AirQuality *service.AirQualityService
	Alerts     *service.AlertService
	Reports    *service.ReportService
	Chat       *service.ChatService
	Sensors    *service.SensorService
	Waste      *service.WasteService
	Solar      *service.SolarService
	Transit    *service.TransitService
	Dashboard  *service.DashboardService
	Repo       service.DataRepository
	Location   domain.Location
}

// Handler contains all HTTP handlers
type Handler struct {
	traffic   *service.TrafficService
	weather   *service.WeatherService
	air       *service.AirQualityService
	alerts    *service.AlertService
	reports   *service.ReportService
	chat      *service.ChatService
	sensors   *service.SensorService
	waste     *service.WasteService
	solar     *service.SolarService
	transit   *service.TransitService
	dashboard *service.DashboardService
	repo      service.DataRepository
	location  domain.Location
}

// NewHandler creates a new handler
func NewHandler(svc Services) *Handler {
	return &Handler{
		traffic:   svc.Traffic,
		weather:   svc.Weather,
		air:       svc.AirQuality,
		alerts:    svc.Alerts,
		reports:   svc.Reports,
		chat:      svc.Chat,
		sensors:   svc.Sensors,
		waste:     svc.Waste,
		solar:     svc.Solar,
		transit:   svc.Transit,
		dashboard: svc.Dashboard,
		repo:      svc.Repo,
		location:  svc.Location,
	}
}

// Root returns the API banner
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Smart City API",
		"version": "1.0.0",
		"city":    h.location.Name,
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	status, storage := "ok", "ok"
	if h.repo != nil {
		if err := h.repo.Health(ctx); err != nil {
			status, storage = "degraded", err.Error()
		}
	}

	return c.JSON(fiber.Map{
		"status":    status,
		"service":   "smartcity-api",
		"version":   "1.0.0",
		"storage":   storage,
		"timestamp": time.Now(),
	})
}

// GetDashboard returns aggregated live data
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboard.GetDashboardData(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch dashboard data")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetCurrentWeather returns current conditions
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	weather, err := h.weather.GetCurrentWeather(c.Context(), lat, lon, c.Query("city", h.location.Name))
	if err != nil {
		return err
	}
	return c.JSON(weather)
}

// GetForecast returns the 5-day forecast
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	weather, err := h.weather.GetForecast(c.Context(), lat, lon, c.Query("city", h.location.Name))
	if err != nil {
		return err
	}
	return c.JSON(weather)
}

// GetWeatherHistory returns archived weather readings within a time range
func (h *Handler) GetWeatherHistory(c *fiber.Ctx) error {
	hours, err := queryInt(c, "hours", defaultHistoryHours)
	if err != nil {
		return err
	}

	data, err := h.weather.History(c.Context(), hours)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"history": data,
		"count":   len(data),
	})
}

// GetCurrentAirQuality returns the latest AQI near a point
func (h *Handler) GetCurrentAirQuality(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	aq, err := h.air.GetCurrent(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(aq)
}

// GetAirQualityHistory returns a week of daily AQI values
func (h *Handler) GetAirQualityHistory(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	aq, err := h.air.GetHistory(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(aq)
}

// point reads lat/lon, defaulting to the configured city centre
func (h *Handler) point(c *fiber.Ctx) (float64, float64, error) {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return 0, 0, err
	}
	outLat, outLon := h.location.Latitude, h.location.Longitude
	if lat != nil {
		outLat = *lat
	}
	if lon != nil {
		outLon = *lon
	}
	return outLat, outLon, nil
}

// optionalPoint reads lat/lon; an absent parameter stays nil
func optionalPoint(c *fiber.Ctx) (*float64, *float64, error) {
	lat, err := optionalFloat(c, "lat", -90, 90)
	if err != nil {
		return nil, nil, err
	}
	lon, err := optionalFloat(c, "lon", -180, 180)
	if err != nil {
		return nil, nil, err
	}
	return lat, lon, nil
}

func optionalFloat(c *fiber.Ctx, key string, lo, hi float64) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < lo || v > hi {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key+" parameter")
	}
	return &v, nil
}

// queryInt parses an integer query parameter; malformed values are a 400
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key+" parameter")
	}
	return v, nil
}
