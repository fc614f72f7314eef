// Package seed provides helpers to create demo profiles and follow edges for
// local development and tests.
package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"socialcore/internal/models"
	"socialcore/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password every seeded profile logs in with.
const DefaultPassword = "password123"

var nonWord = regexp.MustCompile(`\W+`)

// Hasher derives a salted password hash.
type Hasher interface {
	Hash(ctx context.Context, password string) (hash, salt []byte, err error)
}

// Factory builds profiles and follow edges and persists them.
type Factory struct {
	db       *gorm.DB
	hasher   Hasher
	faker    *gofakeit.Faker
	password string
	next     int
}

// NewFactory creates a Factory. A zero seed gives a random sequence.
func NewFactory(db *gorm.DB, hasher Hasher, seed int64, password string) *Factory {
	if password == "" {
		password = DefaultPassword
	}
	return &Factory{
		db:       db,
		hasher:   hasher,
		faker:    gofakeit.New(seed),
		password: password,
	}
}

// profileName returns a valid, unique profile name derived from a fake username.
func (f *Factory) profileName() string {
	f.next++
	suffix := fmt.Sprintf("_%d", f.next)
	base := nonWord.ReplaceAllString(f.faker.Username(), "")
	if base == "" {
		base = "user"
	}
	if limit := validation.NameMaxLength - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	return base + suffix
}

// BuildProfile returns an unsaved profile with fake media, bio and a hashed password.
func (f *Factory) BuildProfile(ctx context.Context, overrides ...func(*models.Profile)) (*models.Profile, error) {
	name := f.profileName()
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID())
	banner := fmt.Sprintf("https://picsum.photos/seed/%s/1200/300", f.faker.UUID())
	bio := f.faker.Sentence(10)

	hash, salt, err := f.hasher.Hash(ctx, f.password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &models.Profile{
		Name:         name,
		Email:        fmt.Sprintf("%s@%s", strings.ToLower(name), f.faker.DomainName()),
		PasswordHash: hash,
		PasswordSalt: salt,
		Avatar:       &avatar,
		Banner:       &banner,
		Bio:          &bio,
	}
	for _, override := range overrides {
		override(profile)
	}
	return profile, nil
}

// CreateProfile builds and persists a profile.
func (f *Factory) CreateProfile(ctx context.Context, overrides ...func(*models.Profile)) (*models.Profile, error) {
	profile, err := f.BuildProfile(ctx, overrides...)
	if err != nil {
		return nil, err
	}
	if err := f.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create profile %s: %w", profile.Name, err)
	}
	return profile, nil
}

// CreateFollow inserts the edge follower -> target. Existing edges are left alone.
func (f *Factory) CreateFollow(ctx context.Context, follower, target string) error {
	if follower == target {
		return fmt.Errorf("profile %s cannot follow itself", follower)
	}
	edge := &models.Follow{FollowerName: follower, TargetName: target}
	return f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}
