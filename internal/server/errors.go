package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shiftplan/internal/apperr"
	"shiftplan/internal/store"
)

// ErrorHandler renders every error as {"error": ..., "details": ...}.
// Unknown errors become a 500 with a generic message; the cause is logged.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if ae, ok := apperr.As(err); ok {
			body := fiber.Map{"error": ae.Message}
			if ae.Details != nil {
				body["details"] = ae.Details
			}
			return c.Status(ae.Kind.Status()).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.Is(err, store.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already exists"})
		}

		log.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
		})
	}
}
