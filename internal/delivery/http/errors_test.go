package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/smartcity/cityapi/internal/service"
)

func TestStatusFor(t *testing.T) {
	code, msg := statusFor(fiber.NewError(fiber.StatusBadRequest, "Invalid request body"))
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", msg)

	code, _ = statusFor(fmt.Errorf("tomtom: failed: %w", service.ErrUpstreamUnavailable))
	assert.Equal(t, fiber.StatusBadGateway, code)

	code, msg = statusFor(fmt.Errorf("wrapped: %w", service.ErrNotFound))
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Not found", msg)

	code, msg = statusFor(errors.New("database exploded"))
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", msg)
}
