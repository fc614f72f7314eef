package service

import (
	"context"
	"errors"
	"testing"

	"socialcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProfileRepository is a mock of the ProfileRepository interface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetWithRelations(ctx context.Context, name string) (*models.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Refresh(ctx context.Context, name string) (*models.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateMedia(ctx context.Context, name string, update models.MediaUpdate) error {
	args := m.Called(ctx, name, update)
	return args.Error(0)
}

func (m *MockProfileRepository) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func TestProfileService_UpdateOwnMedia_Mocked(t *testing.T) {
	avatar := "https://img.example/a.png"
	update := models.MediaUpdate{Avatar: &avatar}

	tests := []struct {
		name         string
		actor        string
		target       string
		mockSetup    func(*MockProfileRepository)
		expectedCode string
	}{
		{
			name:   "Owner",
			actor:  "alice",
			target: "alice",
			mockSetup: func(m *MockProfileRepository) {
				m.On("UpdateMedia", mock.Anything, "alice", update).Return(nil)
				m.On("Refresh", mock.Anything, "alice").Return(&models.Profile{Name: "alice", Avatar: &avatar}, nil)
			},
		},
		{
			name:         "Not owner",
			actor:        "bob",
			target:       "alice",
			mockSetup:    func(*MockProfileRepository) {},
			expectedCode: models.CodeForbidden,
		},
		{
			name:   "Missing profile",
			actor:  "ghost",
			target: "ghost",
			mockSetup: func(m *MockProfileRepository) {
				m.On("UpdateMedia", mock.Anything, "ghost", update).Return(models.NewNotFoundError("Profile", "ghost"))
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:   "Store failure",
			actor:  "alice",
			target: "alice",
			mockSetup: func(m *MockProfileRepository) {
				m.On("UpdateMedia", mock.Anything, "alice", update).Return(models.NewStoreError(errors.New("timeout")))
			},
			expectedCode: models.CodeStoreFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProfileRepository)
			tt.mockSetup(repo)
			svc := NewProfileService(repo)

			profile, err := svc.UpdateOwnMedia(context.Background(), tt.actor, tt.target, update)
			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.True(t, models.HasCode(err, tt.expectedCode))
				assert.Nil(t, profile)
			} else {
				require.NoError(t, err)
				assert.Equal(t, avatar, *profile.Avatar)
			}
			repo.AssertExpectations(t)
			if tt.expectedCode == models.CodeForbidden {
				repo.AssertNotCalled(t, "UpdateMedia", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProfileService_ListClampsPage_Mocked(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("List", mock.Anything, MaxPageSize, 0).Return([]models.Profile{{Name: "alice"}}, nil).Once()
	repo.On("List", mock.Anything, DefaultPageSize, 5).Return([]models.Profile{}, nil).Once()

	svc := NewProfileService(repo)

	profiles, err := svc.List(context.Background(), 5000, -10)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	_, err = svc.List(context.Background(), 0, 5)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}
