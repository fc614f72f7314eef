package service

import (
	"context"
	"encoding/json"
	"testing"

	"socialcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_CreatePassesConflictThrough(t *testing.T) {
	repo := &profileRepoStub{
		createFn: func(context.Context, *models.Profile) error {
			return models.NewConflictError("Profile already exists")
		},
	}
	svc := NewProfileService(repo)

	_, err := svc.Create(context.Background(), CreateProfileInput{Name: "alice", Email: "a@x.io"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestProfileService_Create(t *testing.T) {
	var stored *models.Profile
	repo := &profileRepoStub{
		createFn: func(_ context.Context, p *models.Profile) error {
			p.ID = 7
			stored = p
			return nil
		},
	}
	svc := NewProfileService(repo)

	p, err := svc.Create(context.Background(), CreateProfileInput{
		Name: "alice", Email: "a@x.io", PasswordHash: []byte("h"), PasswordSalt: []byte("s"),
	})
	require.NoError(t, err)
	assert.Same(t, stored, p)
	assert.Equal(t, []byte("s"), p.PasswordSalt)

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"followers":[]`)
	assert.Contains(t, string(body), `"following":[]`)
}

func TestProfileService_UpdateOwnMedia(t *testing.T) {
	updated := false
	repo := &profileRepoStub{
		updateMediaFn: func(_ context.Context, name string, u models.MediaUpdate) error {
			updated = true
			assert.Equal(t, "alice", name)
			return nil
		},
		refreshFn: func(_ context.Context, name string) (*models.Profile, error) {
			return &models.Profile{Name: name, Avatar: strPtr("https://img.example/a.png")}, nil
		},
	}
	svc := NewProfileService(repo)
	ctx := context.Background()

	_, err := svc.UpdateOwnMedia(ctx, "mallory", "alice", models.MediaUpdate{Avatar: strPtr("x")})
	assert.True(t, models.HasCode(err, models.CodeForbidden))
	assert.False(t, updated, "forbidden update never reaches the store")

	p, err := svc.UpdateOwnMedia(ctx, "alice", "alice", models.MediaUpdate{Avatar: strPtr("https://img.example/a.png")})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, "alice", p.Name)
}

func TestProfileService_UpdateMediaNotFound(t *testing.T) {
	repo := &profileRepoStub{
		updateMediaFn: func(_ context.Context, name string, _ models.MediaUpdate) error {
			return models.NewNotFoundError("Profile", name)
		},
	}
	_, err := NewProfileService(repo).UpdateMedia(context.Background(), "ghost", models.MediaUpdate{Banner: strPtr("b")})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestProfileService_FindReturnsNilWhenAbsent(t *testing.T) {
	repo := &profileRepoStub{
		getByNameFn:  func(context.Context, string) (*models.Profile, error) { return nil, nil },
		getByEmailFn: func(context.Context, string) (*models.Profile, error) { return nil, nil },
	}
	svc := NewProfileService(repo)

	p, err := svc.FindByName(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = svc.FindByEmail(context.Background(), "ghost@x.io")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileService_ListClampsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &profileRepoStub{
		listFn: func(_ context.Context, limit, offset int) ([]models.Profile, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc := NewProfileService(repo)

	_, err := svc.List(context.Background(), 1000, -5)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name               string
		limit, offset      int
		wantLimit, wantOff int
	}{
		{"defaults", 0, 0, DefaultPageSize, 0},
		{"negative limit", -1, 3, DefaultPageSize, 3},
		{"in range", 10, 20, 10, 20},
		{"too large", 101, 0, MaxPageSize, 0},
		{"negative offset", 5, -1, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, o := ClampPage(tt.limit, tt.offset)
			assert.Equal(t, tt.wantLimit, l)
			assert.Equal(t, tt.wantOff, o)
		})
	}
}
