package server

import (
	"socialcore/internal/service"
	"socialcore/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register a profile
// @Description Create a profile with a name, email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.RegisterRequest true "Registration request"
// @Success 201 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req validation.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	profile, err := s.authSvc.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
		Banner:   req.Banner,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange email and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.LoginRequest true "Login request"
// @Success 200 {object} service.LoginResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req validation.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	result, err := s.authSvc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}
