package service

import (
	"context"
	"errors"
	"log/slog"

	"socialcore/internal/credential"
	"socialcore/internal/middleware"
	"socialcore/internal/models"
	"socialcore/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ErrInvalidCredentials is the only login failure a caller ever sees, whether
// the email is unknown or the password is wrong.
var ErrInvalidCredentials = models.NewUnauthorizedError("Invalid email or password")

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (hash, salt []byte, err error)
	Verify(ctx context.Context, candidate string, salt, hash []byte) (bool, error)
	VerifyDummy(ctx context.Context, candidate string) error
}

// TokenSigner turns session claims into a bearer token.
type TokenSigner interface {
	Issue(claims models.SessionClaims) (string, error)
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *string
	Banner   *string
}

// LoginResult is returned on successful login. It never carries credential material.
type LoginResult struct {
	AccessToken string  `json:"accessToken"`
	Name        string  `json:"name"`
	Avatar      *string `json:"avatar"`
	Banner      *string `json:"banner"`
	Email       string  `json:"email"`
	Bio         *string `json:"bio"`
}

// AuthService registers profiles and exchanges credentials for access tokens.
type AuthService struct {
	profiles *ProfileService
	hasher   PasswordHasher
	tokens   TokenSigner
}

// NewAuthService returns a new AuthService.
func NewAuthService(profiles *ProfileService, hasher PasswordHasher, tokens TokenSigner) *AuthService {
	return &AuthService{
		profiles: profiles,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a profile with a freshly salted password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (profile *models.Profile, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Register", attribute.String("name", in.Name))
	defer func() { observability.EndSpan(span, err) }()

	existing, err := s.profiles.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Profile already exists")
	}

	hash, salt, err := s.hasher.Hash(ctx, in.Password)
	if errors.Is(err, credential.ErrEmptyPassword) {
		return nil, models.NewValidationError("password is required")
	}
	if err != nil {
		return nil, models.NewStoreError(err)
	}

	profile, err = s.profiles.Create(ctx, CreateProfileInput{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Avatar:       in.Avatar,
		Banner:       in.Banner,
	})
	if err != nil {
		return nil, err
	}

	observability.Registrations.Inc()
	middleware.Logger.InfoContext(ctx, "profile registered", slog.String("name", profile.Name))
	return profile, nil
}

// Login verifies email and password and issues an access token.
// Unknown email and wrong password take the same path and return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Login")
	defer func() { observability.EndSpan(span, err) }()

	profile, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		observability.LoginAttempts.WithLabelValues(observability.LoginError).Inc()
		return nil, err
	}

	ok := false
	if profile == nil {
		// same derivation cost as a real verify
		if err := s.hasher.VerifyDummy(ctx, password); err != nil {
			observability.LoginAttempts.WithLabelValues(observability.LoginError).Inc()
			return nil, models.NewStoreError(err)
		}
	} else {
		ok, err = s.hasher.Verify(ctx, password, profile.PasswordSalt, profile.PasswordHash)
		if err != nil {
			observability.LoginAttempts.WithLabelValues(observability.LoginError).Inc()
			return nil, models.NewStoreError(err)
		}
	}

	if profile == nil || !ok {
		observability.LoginAttempts.WithLabelValues(observability.LoginFailure).Inc()
		middleware.Logger.InfoContext(ctx, "login rejected", slog.Bool("known_email", profile != nil))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(models.ClaimsFor(profile))
	if err != nil {
		observability.LoginAttempts.WithLabelValues(observability.LoginError).Inc()
		return nil, models.NewStoreError(err)
	}

	observability.LoginAttempts.WithLabelValues(observability.LoginSuccess).Inc()
	return &LoginResult{
		AccessToken: token,
		Name:        profile.Name,
		Avatar:      profile.Avatar,
		Banner:      profile.Banner,
		Email:       profile.Email,
		Bio:         profile.Bio,
	}, nil
}
