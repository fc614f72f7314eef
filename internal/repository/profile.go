// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"log/slog"

	"socialcore/internal/cache"
	"socialcore/internal/middleware"
	"socialcore/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	// GetByName returns nil, nil when no profile has that name.
	GetByName(ctx context.Context, name string) (*models.Profile, error)
	// GetByEmail returns nil, nil when no profile has that email.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	// GetWithRelations loads a profile with its follower and following lists.
	GetWithRelations(ctx context.Context, name string) (*models.Profile, error)
	// Refresh is GetWithRelations read from the store; it overwrites the cached copy.
	Refresh(ctx context.Context, name string) (*models.Profile, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateMedia(ctx context.Context, name string, update models.MediaUpdate) error
	List(ctx context.Context, limit, offset int) ([]models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStoreError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStoreError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetWithRelations(ctx context.Context, name string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(name), &profile, cache.ProfileTTL, func() error {
		return r.loadWithRelations(ctx, name, &profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Refresh(ctx context.Context, name string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.loadWithRelations(ctx, name, &profile); err != nil {
		return nil, err
	}
	cache.Put(ctx, cache.ProfileKey(name), &profile, cache.ProfileTTL)
	return &profile, nil
}

func (r *profileRepository) loadWithRelations(ctx context.Context, name string, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Profile", name)
		}
		return models.NewStoreError(err)
	}
	followers, err := listFollowers(ctx, r.db, name)
	if err != nil {
		return err
	}
	following, err := listFollowing(ctx, r.db, name)
	if err != nil {
		return err
	}
	profile.Followers = followers
	profile.Following = following
	profile.Count = models.ProfileCount{
		Followers: int64(len(followers)),
		Following: int64(len(following)),
	}
	return nil
}

func (r *profileRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Profile already exists")
		}
		return models.NewStoreError(err)
	}
	return nil
}

func (r *profileRepository) UpdateMedia(ctx context.Context, name string, update models.MediaUpdate) error {
	if update.Empty() {
		exists, err := r.Exists(ctx, name)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError("Profile", name)
		}
		return nil
	}

	fields := map[string]interface{}{}
	if update.Avatar != nil {
		fields["avatar"] = *update.Avatar
	}
	if update.Banner != nil {
		fields["banner"] = *update.Banner
	}

	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("name = ?", name).Updates(fields)
	if result.Error != nil {
		return models.NewStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", name)
	}
	r.invalidateWithNeighbours(ctx, name)
	return nil
}

// invalidateWithNeighbours drops name and every profile whose cached follow
// lists embed its avatar.
func (r *profileRepository) invalidateWithNeighbours(ctx context.Context, name string) {
	names := []string{name}
	var neighbours []string
	err := r.db.WithContext(ctx).Raw(
		`SELECT follower_name FROM follows WHERE target_name = ?
		UNION SELECT target_name FROM follows WHERE follower_name = ?`, name, name).
		Scan(&neighbours).Error
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load neighbours for cache invalidation",
			slog.String("profile", name), slog.String("error", err.Error()))
	}
	cache.InvalidateProfiles(ctx, append(names, neighbours...)...)
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Order("name ASC").Limit(limit).Offset(offset).Find(&profiles).Error; err != nil {
		return nil, models.NewStoreError(err)
	}
	if len(profiles) == 0 {
		return profiles, nil
	}
	for i := range profiles {
		profiles[i].Followers = []models.ProfileRef{}
		profiles[i].Following = []models.ProfileRef{}
	}

	names := make([]string, len(profiles))
	for i := range profiles {
		names[i] = profiles[i].Name
	}
	followers, err := countEdges(ctx, r.db, "target_name", names)
	if err != nil {
		return nil, err
	}
	following, err := countEdges(ctx, r.db, "follower_name", names)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].Count = models.ProfileCount{
			Followers: followers[profiles[i].Name],
			Following: following[profiles[i].Name],
		}
	}
	return profiles, nil
}
