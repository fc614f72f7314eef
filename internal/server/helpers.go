package server

import (
	"log/slog"

	"socialcore/internal/middleware"
	"socialcore/internal/models"
	"socialcore/internal/service"
	"socialcore/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters.
// Out of range values are clamped rather than rejected.
func parsePagination(c *fiber.Ctx) Pagination {
	limit, offset := service.ClampPage(
		c.QueryInt("limit", service.DefaultPageSize),
		c.QueryInt("offset", 0),
	)
	return Pagination{Limit: limit, Offset: offset}
}

// statusFor maps an AppError code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.CodeValidation, models.CodeInvalidOperation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Unknown errors become a
// generic 500 and their cause is only logged.
func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	status := statusFor(appErr.Code)

	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("code", appErr.Code),
			slog.String("error", err.Error()),
		)
	}

	return c.Status(status).JSON(appErr.Response())
}

// caller returns the authenticated profile name stored by AuthRequired.
func caller(c *fiber.Ctx) string {
	name, _ := c.Locals(middleware.LocalProfileName).(string)
	return name
}

// nameParam reads and validates the :name route parameter.
func nameParam(c *fiber.Ctx) (string, error) {
	name := c.Params("name")
	if err := validation.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// parseBody decodes the JSON body into dest and reports malformed input as a
// validation error.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}
