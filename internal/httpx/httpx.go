// Package httpx holds request parsing helpers shared by the feature handlers.
package httpx

import (
	"strconv"
	"time"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" is invalid")
	}
	return uint(id), nil
}

// Bind parses a JSON or form body into out and validates its tags.
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return apperr.Validate(out)
}

// OptionalDay parses a "2006-01-02" value; empty yields the zero time.
func OptionalDay(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := models.ParseDay(value)
	if err != nil {
		return time.Time{}, apperr.Invalid("%s must be formatted as YYYY-MM-DD", field)
	}
	return d, nil
}

// FormatDay renders a stored day for responses.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}
