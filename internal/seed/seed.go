package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"socialcore/internal/middleware"
	"socialcore/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	Profiles          int
	FollowsPerProfile int
	Clean             bool
	// Seed makes the generated data reproducible. Zero means random.
	Seed     int64
	Password string
}

// Result summarizes what Seed created.
type Result struct {
	Profiles []models.Profile
	Follows  int
}

// Seed creates opts.Profiles profiles and a random follow mesh between them.
func Seed(ctx context.Context, db *gorm.DB, hasher Hasher, opts Options) (*Result, error) {
	if opts.Profiles < 0 || opts.FollowsPerProfile < 0 {
		return nil, errors.New("seed counts must not be negative")
	}

	if opts.Clean {
		if err := Clear(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	factory := NewFactory(db, hasher, seed, opts.Password)
	result := &Result{Profiles: make([]models.Profile, 0, opts.Profiles)}

	for i := 0; i < opts.Profiles; i++ {
		p, err := factory.CreateProfile(ctx)
		if err != nil {
			return nil, err
		}
		result.Profiles = append(result.Profiles, *p)
	}
	middleware.Logger.InfoContext(ctx, "seeded profiles", slog.Int("count", len(result.Profiles)))

	rng := rand.New(rand.NewSource(seed))
	perProfile := opts.FollowsPerProfile
	if n := len(result.Profiles); perProfile > n-1 {
		perProfile = max(n-1, 0)
	}

	for i, follower := range result.Profiles {
		picked := 0
		for _, j := range rng.Perm(len(result.Profiles)) {
			if picked == perProfile {
				break
			}
			if j == i {
				continue
			}
			if err := factory.CreateFollow(ctx, follower.Name, result.Profiles[j].Name); err != nil {
				return nil, fmt.Errorf("create follow %s -> %s: %w", follower.Name, result.Profiles[j].Name, err)
			}
			picked++
		}
		result.Follows += picked
	}
	middleware.Logger.InfoContext(ctx, "seeded follows", slog.Int("count", result.Follows))

	return result, nil
}

// Clear removes every follow edge and profile.
func Clear(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Profile{}).Error
	})
}
