package http

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/cityapi/internal/service"
)

// ErrorHandler renders every failure as {"error": true, "detail": "..."}.
// Service errors are mapped by kind; anything unrecognised is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, message := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("http: %s %s failed: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":  true,
		"detail": message,
	})
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	message := ""
	var re *service.RequestError
	if errors.As(err, &re) {
		message = re.Error()
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, orDefault(message, "Not found")
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest, orDefault(message, "Invalid request")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway, "Upstream provider unavailable"
	default:
		return fiber.StatusInternalServerError, "Internal Server Error"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
