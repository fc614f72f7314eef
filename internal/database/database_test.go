package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"socialcore/internal/config"
	"socialcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every :memory: connection is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, configurePool(db, &config.Config{}))
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "social"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=social sslmode=disable", dsn)
}

func TestApplySchema_AutoMigrateOutsideProduction(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, ApplySchema(context.Background(), db, &config.Config{Env: "test"}))
	assert.True(t, db.Migrator().HasTable(&models.Profile{}))
	assert.True(t, db.Migrator().HasTable(&models.Follow{}))
	assert.True(t, db.Migrator().HasIndex(&models.Profile{}, "idx_profiles_name"))
	assert.False(t, db.Migrator().HasTable(&MigrationLog{}))
}

func TestRunMigrations(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	assert.True(t, db.Migrator().HasTable("profiles"))
	assert.True(t, db.Migrator().HasTable("follows"))

	// second run is a no-op
	require.NoError(t, RunMigrations(ctx, db))

	status, err := Status(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, status.Pending)
	assert.Len(t, status.Applied, len(GetMigrations()))
}

func TestRollbackMigration(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))

	require.NoError(t, RollbackMigration(ctx, db, 2))
	assert.False(t, db.Migrator().HasTable("follows"))

	status, err := Status(ctx, db)
	require.NoError(t, err)
	require.Len(t, status.Pending, 1)
	assert.Equal(t, 2, status.Pending[0].Version)

	assert.Error(t, RollbackMigration(ctx, db, 2), "already rolled back")
	assert.Error(t, RollbackMigration(ctx, db, 999), "unknown version")
}

func TestRunMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, db.Create(&MigrationLog{Version: 424242, Name: "from_the_future"}).Error)

	err := RunMigrations(ctx, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "424242")
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_b.up.sql":   {Data: []byte("B")},
		"migrations/000002_b.down.sql": {Data: []byte("-B")},
		"migrations/000001_a.up.sql":   {Data: []byte("A")},
		"migrations/000001_a.down.sql": {Data: []byte("-A")},
		"migrations/README.md":         {Data: []byte("ignored")},
	}
	loaded, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "000001_a", loaded[0].String())
	assert.Equal(t, "-B", loaded[1].DownScript)

	_, err = LoadMigrations(fstest.MapFS{"migrations/000001_a.up.sql": {Data: []byte("A")}})
	assert.Error(t, err, "missing down script")

	_, err = LoadMigrations(fstest.MapFS{
		"migrations/x_a.up.sql":   {Data: []byte("A")},
		"migrations/x_a.down.sql": {Data: []byte("-A")},
	})
	assert.Error(t, err, "non-numeric version")
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found is ignored")

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")
	buf.Reset()

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")
	buf.Reset()

	l.LogMode(logger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}
