package rest

import (
	"errors"

	"github.com/cristianortiz/sneakerbid/internal/auction/domain"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps error categories to HTTP status codes. stateStatus is what a state
// error becomes, 409 everywhere except the payment endpoint.
func statusFor(err error, stateStatus int) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrState):
		return stateStatus
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error, stateStatus int) error {
	status := statusFor(err, stateStatus)
	if status == fiber.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
