package server

import (
	"github.com/gofiber/fiber/v2"
)

// Follow handles PUT /api/profiles/:name/follow
// @Summary Follow a profile
// @Description Idempotent; returns the target profile with relations
// @Tags follows
// @Produce json
// @Param name path string true "Profile to follow"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name}/follow [put]
func (s *Server) Follow(c *fiber.Ctx) error {
	target, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.graphSvc.Follow(c.UserContext(), caller(c), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// Unfollow handles PUT /api/profiles/:name/unfollow
// @Summary Unfollow a profile
// @Description Succeeds when no edge exists; returns the target profile with relations
// @Tags follows
// @Produce json
// @Param name path string true "Profile to unfollow"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name}/unfollow [put]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	target, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.graphSvc.Unfollow(c.UserContext(), caller(c), target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
