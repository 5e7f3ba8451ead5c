package handlers

import (
	"errors"
	"strconv"

	"loan-backend/internal/core/domain"
	"loan-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// writeError maps business errors to status codes; anything else is a 500 with fallback as message
func writeError(c *fiber.Ctx, err error, fallback string) error {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return response.InternalServerError(c, fallback)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, domainErr.Message)
	case errors.Is(err, domain.ErrInvalidArgument):
		return response.BadRequest(c, domainErr.Message)
	case errors.Is(err, domain.ErrInsufficientCredit):
		return response.UnprocessableEntity(c, domainErr.Message)
	case errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, domainErr.Message)
	default:
		return response.InternalServerError(c, fallback)
	}
}

// parseID reads a positive numeric id from a route param or query value
func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
