package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/cityapi/internal/service"
)

// ListSensors returns sensors near a point
func (h *Handler) ListSensors(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	sensors, err := h.sensors.List(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(sensors)
}

// GetSensor returns one sensor with its 24-hour history
func (h *Handler) GetSensor(c *fiber.Ctx) error {
	sensor, err := h.sensors.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sensor)
}

// ListWasteBins returns every monitored bin
func (h *Handler) ListWasteBins(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	return c.JSON(h.waste.List(c.Context(), lat, lon, c.QueryBool("refresh", false)))
}

// GetWasteBin returns one bin by id
func (h *Handler) GetWasteBin(c *fiber.Ctx) error {
	bin, err := h.waste.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(bin)
}

// GetSolarEstimate returns generation estimates for a point
func (h *Handler) GetSolarEstimate(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}
	return c.JSON(h.solar.Estimate(c.Context(), lat, lon))
}

// GetSolarHistory returns 30 days of production for one system size
func (h *Handler) GetSolarHistory(c *fiber.Ctx) error {
	size, err := c.ParamsInt("size")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid system size parameter")
	}
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}

	history, err := h.solar.History(c.Context(), size, lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(history)
}

// ListTransitRoutes returns the transit network
func (h *Handler) ListTransitRoutes(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	return c.JSON(h.transit.Routes(c.Context(), lat, lon, c.QueryBool("refresh", false)))
}

// GetTransitRoute returns one route with its stops
func (h *Handler) GetTransitRoute(c *fiber.Ctx) error {
	route, err := h.transit.Route(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(route)
}

// GetNearbyStops returns stops within radius km of a point
func (h *Handler) GetNearbyStops(c *fiber.Ctx) error {
	lat, lon, err := h.point(c)
	if err != nil {
		return err
	}
	radius, err := optionalFloat(c, "radius", 0, service.MaxStopRadiusKm)
	if err != nil {
		return err
	}
	radiusKm := service.DefaultStopRadiusKm
	if radius != nil {
		radiusKm = *radius
	}

	stops, err := h.transit.Stops(c.Context(), lat, lon, radiusKm)
	if err != nil {
		return err
	}
	return c.JSON(stops)
}
