package seed

import (
	"context"
	"testing"

	"socialcore/internal/credential"
	"socialcore/internal/models"
	"socialcore/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Follow{}))
	return db
}

func testHasher() *credential.Store {
	return credential.NewStore(credential.Params{Time: 1, Memory: 8 * 1024, Threads: 1, Concurrency: 4})
}

func TestFactory_CreateProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	hasher := testHasher()
	f := NewFactory(db, hasher, 42, "")

	for i := 0; i < 20; i++ {
		p, err := f.CreateProfile(ctx)
		require.NoError(t, err)
		assert.NoError(t, validation.ValidateName(p.Name), "generated name %q", p.Name)
		assert.NotEmpty(t, p.Email)
		require.NotNil(t, p.Avatar)

		ok, err := hasher.Verify(ctx, DefaultPassword, p.PasswordSalt, p.PasswordHash)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	var count int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(20), count)
}

func TestFactory_Overrides(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, testHasher(), 1, "secret")

	p, err := f.CreateProfile(context.Background(), func(p *models.Profile) {
		p.Name = "fixed"
		p.Email = "fixed@example.com"
	})
	require.NoError(t, err)
	assert.Equal(t, "fixed", p.Name)
	assert.Equal(t, "fixed@example.com", p.Email)
}

func TestFactory_CreateFollow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := NewFactory(db, testHasher(), 1, "")

	a, err := f.CreateProfile(ctx)
	require.NoError(t, err)
	b, err := f.CreateProfile(ctx)
	require.NoError(t, err)

	require.NoError(t, f.CreateFollow(ctx, a.Name, b.Name))
	require.NoError(t, f.CreateFollow(ctx, a.Name, b.Name))
	assert.Error(t, f.CreateFollow(ctx, a.Name, a.Name))

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeed_SocialMesh(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	result, err := Seed(ctx, db, testHasher(), Options{Profiles: 6, FollowsPerProfile: 3, Seed: 7})
	require.NoError(t, err)
	assert.Len(t, result.Profiles, 6)
	assert.Equal(t, 18, result.Follows)

	var follows []models.Follow
	require.NoError(t, db.Find(&follows).Error)
	assert.Len(t, follows, 18)
	for _, edge := range follows {
		assert.NotEqual(t, edge.FollowerName, edge.TargetName)
	}
}

func TestSeed_CapsFollowsAndCleans(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := Seed(ctx, db, testHasher(), Options{Profiles: 3, FollowsPerProfile: 10, Seed: 1})
	require.NoError(t, err)

	result, err := Seed(ctx, db, testHasher(), Options{Profiles: 2, FollowsPerProfile: 10, Clean: true, Seed: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Follows)

	var profiles, follows int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&follows).Error)
	assert.Equal(t, int64(2), profiles)
	assert.Equal(t, int64(2), follows)
}

func TestSeed_RejectsNegativeCounts(t *testing.T) {
	_, err := Seed(context.Background(), setupTestDB(t), testHasher(), Options{Profiles: -1})
	assert.Error(t, err)
}
