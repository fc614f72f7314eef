package repository

import (
	"context"

	"socialcore/internal/cache"
	"socialcore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	// Insert adds the edge and reports whether it was created. An existing edge is left alone.
	Insert(ctx context.Context, follower, target string) (bool, error)
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, follower, target string) (bool, error)
	Exists(ctx context.Context, follower, target string) (bool, error)
	Followers(ctx context.Context, name string) ([]models.ProfileRef, error)
	Following(ctx context.Context, name string) ([]models.ProfileRef, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Insert(ctx context.Context, follower, target string) (bool, error) {
	edge := models.Follow{FollowerName: follower, TargetName: target}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if result.Error != nil {
		return false, models.NewStoreError(result.Error)
	}
	created := result.RowsAffected > 0
	if created {
		cache.InvalidateProfiles(ctx, follower, target)
	}
	return created, nil
}

func (r *followRepository) Delete(ctx context.Context, follower, target string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("follower_name = ? AND target_name = ?", follower, target).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewStoreError(result.Error)
	}
	removed := result.RowsAffected > 0
	if removed {
		cache.InvalidateProfiles(ctx, follower, target)
	}
	return removed, nil
}

func (r *followRepository) Exists(ctx context.Context, follower, target string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_name = ? AND target_name = ?", follower, target).
		Count(&count).Error; err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Followers(ctx context.Context, name string) ([]models.ProfileRef, error) {
	return listFollowers(ctx, r.db, name)
}

func (r *followRepository) Following(ctx context.Context, name string) ([]models.ProfileRef, error) {
	return listFollowing(ctx, r.db, name)
}

// listFollowers returns the profiles that follow name, oldest edge first.
func listFollowers(ctx context.Context, db *gorm.DB, name string) ([]models.ProfileRef, error) {
	refs := []models.ProfileRef{}
	err := db.WithContext(ctx).Table("follows").
		Select("profiles.name, profiles.avatar").
		Joins("JOIN profiles ON profiles.name = follows.follower_name").
		Where("follows.target_name = ?", name).
		Order("follows.created_at ASC, profiles.name ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return refs, nil
}

// listFollowing returns the profiles name follows, oldest edge first.
func listFollowing(ctx context.Context, db *gorm.DB, name string) ([]models.ProfileRef, error) {
	refs := []models.ProfileRef{}
	err := db.WithContext(ctx).Table("follows").
		Select("profiles.name, profiles.avatar").
		Joins("JOIN profiles ON profiles.name = follows.target_name").
		Where("follows.follower_name = ?", name).
		Order("follows.created_at ASC, profiles.name ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return refs, nil
}

type edgeCount struct {
	Name  string
	Total int64
}

// countEdges counts follow rows grouped by column for the given names.
// column is either "target_name" (followers) or "follower_name" (following).
func countEdges(ctx context.Context, db *gorm.DB, column string, names []string) (map[string]int64, error) {
	var rows []edgeCount
	err := db.WithContext(ctx).Table("follows").
		Select(column+" AS name, COUNT(*) AS total").
		Where(column+" IN ?", names).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Total
	}
	return counts, nil
}
