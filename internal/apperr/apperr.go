// Package apperr holds the error kinds shared by the bookkeeping services
// and their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")
	// ErrPrecondition marks a missing seeded row (transaction or relationship type).
	ErrPrecondition = errors.New("missing prerequisite")
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

func Precondition(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrPrecondition)
}

// FromDB translates gorm errors into error kinds. what names the row, e.g. "entity 4".
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Conflict("%s is referenced by other records", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Status returns the HTTP status for a known error kind, 0 otherwise.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrPrecondition):
		return fiber.StatusPreconditionFailed
	}
	return 0
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every failing field as one ErrInvalid.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid("%v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	return Invalid("invalid fields: %s", strings.Join(fields, ", "))
}
