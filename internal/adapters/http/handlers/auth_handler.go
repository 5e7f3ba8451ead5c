package handlers

import (
	"strings"

	"loan-backend/internal/core/services"
	"loan-backend/internal/pkg/response"
	"loan-backend/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.Authenticator) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles operator login
// @Summary Login
// @Description Authenticate an operator and return a Bearer access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response{data=services.LoginOutput}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.Username = strings.TrimSpace(input.Username)
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	out, err := h.authService.Login(c.UserContext(), &input)
	if err != nil {
		return writeError(c, err, "Failed to login")
	}

	return response.Success(c, "Login successful", out)
}
