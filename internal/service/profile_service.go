// Package service holds the business logic behind the HTTP handlers.
package service

import (
	"context"

	"socialcore/internal/models"
	"socialcore/internal/repository"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// CreateProfileInput carries an already hashed credential; the service never sees the password.
type CreateProfileInput struct {
	Name         string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	Avatar       *string
	Banner       *string
}

// ProfileService is the profile directory.
type ProfileService struct {
	profiles repository.ProfileRepository
}

// NewProfileService returns a new ProfileService.
func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Create inserts a profile. A taken name or email is a Conflict, including when
// two registrations race past the caller's own existence check.
func (s *ProfileService) Create(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	profile := &models.Profile{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		PasswordSalt: in.PasswordSalt,
		Avatar:       in.Avatar,
		Banner:       in.Banner,
		Followers:    []models.ProfileRef{},
		Following:    []models.ProfileRef{},
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByName returns nil, nil when no profile has that name.
func (s *ProfileService) FindByName(ctx context.Context, name string) (*models.Profile, error) {
	return s.profiles.GetByName(ctx, name)
}

// FindByEmail returns nil, nil when no profile has that email.
func (s *ProfileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.profiles.GetByEmail(ctx, email)
}

// Get returns the profile with its follow lists, or NotFound.
func (s *ProfileService) Get(ctx context.Context, name string) (*models.Profile, error) {
	return s.profiles.GetWithRelations(ctx, name)
}

// UpdateMedia applies a partial avatar/banner update and returns the fresh profile.
func (s *ProfileService) UpdateMedia(ctx context.Context, name string, update models.MediaUpdate) (*models.Profile, error) {
	if err := s.profiles.UpdateMedia(ctx, name, update); err != nil {
		return nil, err
	}
	return s.profiles.Refresh(ctx, name)
}

// UpdateOwnMedia is UpdateMedia restricted to the profile's owner.
func (s *ProfileService) UpdateOwnMedia(ctx context.Context, actor, name string, update models.MediaUpdate) (*models.Profile, error) {
	if actor != name {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}
	return s.UpdateMedia(ctx, name, update)
}

// List returns a page of profiles ordered by name.
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	limit, offset = ClampPage(limit, offset)
	return s.profiles.List(ctx, limit, offset)
}

// ClampPage normalizes paging parameters: limit into 1..MaxPageSize (DefaultPageSize when unset), offset to >= 0.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
