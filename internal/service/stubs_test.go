package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"socialcore/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type profileRepoStub struct {
	getByNameFn        func(context.Context, string) (*models.Profile, error)
	getByEmailFn       func(context.Context, string) (*models.Profile, error)
	getWithRelationsFn func(context.Context, string) (*models.Profile, error)
	refreshFn          func(context.Context, string) (*models.Profile, error)
	existsFn           func(context.Context, string) (bool, error)
	createFn           func(context.Context, *models.Profile) error
	updateMediaFn      func(context.Context, string, models.MediaUpdate) error
	listFn             func(context.Context, int, int) ([]models.Profile, error)
}

func (s *profileRepoStub) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	return s.getByNameFn(ctx, name)
}
func (s *profileRepoStub) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *profileRepoStub) GetWithRelations(ctx context.Context, name string) (*models.Profile, error) {
	return s.getWithRelationsFn(ctx, name)
}
func (s *profileRepoStub) Refresh(ctx context.Context, name string) (*models.Profile, error) {
	return s.refreshFn(ctx, name)
}
func (s *profileRepoStub) Exists(ctx context.Context, name string) (bool, error) {
	return s.existsFn(ctx, name)
}
func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}
func (s *profileRepoStub) UpdateMedia(ctx context.Context, name string, update models.MediaUpdate) error {
	return s.updateMediaFn(ctx, name, update)
}
func (s *profileRepoStub) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	return s.listFn(ctx, limit, offset)
}

type followRepoStub struct {
	insertFn    func(context.Context, string, string) (bool, error)
	deleteFn    func(context.Context, string, string) (bool, error)
	existsFn    func(context.Context, string, string) (bool, error)
	followersFn func(context.Context, string) ([]models.ProfileRef, error)
	followingFn func(context.Context, string) ([]models.ProfileRef, error)
}

func (s *followRepoStub) Insert(ctx context.Context, follower, target string) (bool, error) {
	return s.insertFn(ctx, follower, target)
}
func (s *followRepoStub) Delete(ctx context.Context, follower, target string) (bool, error) {
	return s.deleteFn(ctx, follower, target)
}
func (s *followRepoStub) Exists(ctx context.Context, follower, target string) (bool, error) {
	return s.existsFn(ctx, follower, target)
}
func (s *followRepoStub) Followers(ctx context.Context, name string) ([]models.ProfileRef, error) {
	return s.followersFn(ctx, name)
}
func (s *followRepoStub) Following(ctx context.Context, name string) ([]models.ProfileRef, error) {
	return s.followingFn(ctx, name)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.FollowEvent
	err    error
}

func (n *recordingNotifier) PublishFollowEvent(_ context.Context, ev models.FollowEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Events() []models.FollowEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.FollowEvent(nil), n.events...)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every :memory: connection is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Follow{}))
	return db
}

// setupSharedDB opens a file database with several connections so concurrent
// callers race on the real unique constraints instead of queueing on one conn.
func setupSharedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "socialcore.db") + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Follow{}))
	return db
}

func strPtr(s string) *string { return &s }
