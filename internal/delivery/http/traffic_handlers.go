package http

import (
	"github.com/gofiber/fiber/v2"
)

const defaultHistoryHours = 24

// GetTrafficStatus returns the current network snapshot
func (h *Handler) GetTrafficStatus(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	snap, err := h.traffic.Status(c.Context(), lat, lon, c.QueryBool("refresh", false))
	if err != nil {
		return err
	}
	return c.JSON(snap)
}

// GetRoads returns the roads of the current snapshot
func (h *Handler) GetRoads(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	roads, err := h.traffic.Roads(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"roads": roads})
}

// GetRoad returns one road by id
func (h *Handler) GetRoad(c *fiber.Ctx) error {
	road, err := h.traffic.Road(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(road)
}

// GetJunctions returns the junctions of the current snapshot
func (h *Handler) GetJunctions(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	junctions, err := h.traffic.Junctions(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"junctions": junctions})
}

// GetIncidents returns the incidents of the current snapshot
func (h *Handler) GetIncidents(c *fiber.Ctx) error {
	lat, lon, err := optionalPoint(c)
	if err != nil {
		return err
	}

	incidents, err := h.traffic.Incidents(c.Context(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"incidents": incidents})
}

// GetTrafficPrediction returns every road's forecast at the requested horizon
func (h *Handler) GetTrafficPrediction(c *fiber.Ctx) error {
	hoursAhead, err := queryInt(c, "hours_ahead", 2)
	if err != nil {
		return err
	}

	prediction, err := h.traffic.Prediction(c.Context(), hoursAhead)
	if err != nil {
		return err
	}
	return c.JSON(prediction)
}

// GetTrafficModel returns the fitted estimator coefficients
func (h *Handler) GetTrafficModel(c *fiber.Ctx) error {
	return c.JSON(h.traffic.Model())
}

// GetTrafficHistory returns archived snapshot summaries within a time range
func (h *Handler) GetTrafficHistory(c *fiber.Ctx) error {
	hours, err := queryInt(c, "hours", defaultHistoryHours)
	if err != nil {
		return err
	}

	data, err := h.traffic.History(c.Context(), hours)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"history": data,
		"count":   len(data),
	})
}
