package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/cityapi/internal/domain"
)

// ListAlerts returns alerts matching the query filters
func (h *Handler) ListAlerts(c *fiber.Ctx) error {
	alerts := h.alerts.List(c.Context(), domain.AlertFilter{
		CategoryID: c.Query("category_id"),
		SeverityID: c.Query("severity_id"),
		ActiveOnly: c.QueryBool("active_only", true),
	})

	return c.JSON(fiber.Map{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// GetAlertCategories lists alert categories
func (h *Handler) GetAlertCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.alerts.Categories()})
}

// GetSeverityLevels lists alert severities, lowest first
func (h *Handler) GetSeverityLevels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"severity_levels": h.alerts.SeverityLevels()})
}

// GetActiveAlertSummary counts active alerts
func (h *Handler) GetActiveAlertSummary(c *fiber.Ctx) error {
	return c.JSON(h.alerts.Summary(c.Context()))
}

// GetAlert returns one alert by id
func (h *Handler) GetAlert(c *fiber.Ctx) error {
	alert, err := h.alerts.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(alert)
}

// ListReports returns citizen reports, newest first
func (h *Handler) ListReports(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		return err
	}

	reports := h.reports.List(c.Context(), domain.ReportFilter{
		CategoryID: c.Query("category_id"),
		StatusID:   c.Query("status_id"),
		Limit:      limit,
	})

	return c.JSON(fiber.Map{
		"count":   len(reports),
		"reports": reports,
	})
}

// GetReportCategories lists report categories
func (h *Handler) GetReportCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.reports.Categories()})
}

// CreateReport files a new citizen report
func (h *Handler) CreateReport(c *fiber.Ctx) error {
	var req domain.ReportCreate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.reports.Create(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReport returns one report by id
func (h *Handler) GetReport(c *fiber.Ctx) error {
	report, err := h.reports.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// UpdateReportStatus moves a report through the workflow
func (h *Handler) UpdateReportStatus(c *fiber.Ctx) error {
	var req domain.ReportStatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	report, err := h.reports.UpdateStatus(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// UpvoteReport adds one vote to a report
func (h *Handler) UpvoteReport(c *fiber.Ctx) error {
	id := c.Params("id")
	upvotes, err := h.reports.Upvote(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "upvotes": upvotes})
}

// AddReportComment appends a comment to a report
func (h *Handler) AddReportComment(c *fiber.Ctx) error {
	var req domain.CommentCreate
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	comment, err := h.reports.AddComment(c.Context(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// Chat sends a message to the city assistant
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.chat.Chat(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetChatSession returns a session's history
func (h *Handler) GetChatSession(c *fiber.Ctx) error {
	session, err := h.chat.Session(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// ClearChatSession empties a session's history
func (h *Handler) ClearChatSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.chat.ClearSession(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"session_id": id,
		"message":    "Chat history cleared successfully",
	})
}

// GetSuggestedPrompts lists example questions
func (h *Handler) GetSuggestedPrompts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"prompts": h.chat.SuggestedPrompts()})
}
