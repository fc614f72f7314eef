package server

import (
	"socialcore/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListProfiles handles GET /api/profiles
// @Summary List profiles
// @Tags profiles
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles [get]
func (s *Server) ListProfiles(c *fiber.Ctx) error {
	page := parsePagination(c)
	profiles, err := s.profileSvc.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfile handles GET /api/profiles/:name
// @Summary Get a profile
// @Description Profile with followers, following and counts
// @Tags profiles
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.profileSvc.Get(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetFollowers handles GET /api/profiles/:name/followers
// @Summary List followers
// @Tags profiles
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {array} models.ProfileRef
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	refs, err := s.graphSvc.Followers(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refs)
}

// GetFollowing handles GET /api/profiles/:name/following
// @Summary List followed profiles
// @Tags profiles
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {array} models.ProfileRef
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}
	refs, err := s.graphSvc.Following(c.UserContext(), name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(refs)
}

// UpdateMedia handles PUT /api/profiles/:name/media
// @Summary Update avatar and banner
// @Description Only the owner may update; omitted fields are left unchanged
// @Tags profiles
// @Accept json
// @Produce json
// @Param name path string true "Profile name"
// @Param request body validation.MediaRequest true "Media update"
// @Success 200 {object} models.Profile
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /profiles/{name}/media [put]
func (s *Server) UpdateMedia(c *fiber.Ctx) error {
	name, err := nameParam(c)
	if err != nil {
		return respondError(c, err)
	}

	var req validation.MediaRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	profile, err := s.profileSvc.UpdateOwnMedia(c.UserContext(), caller(c), name, req.Update())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
