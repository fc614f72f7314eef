// Package token signs session claims into bearer tokens and verifies them.
package token

import (
	"errors"
	"fmt"
	"time"

	"socialcore/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultIssuer   = "socialcore-api"
	DefaultAudience = "socialcore-client"
)

// ErrInvalidToken is returned by Parse for any token that fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the full JWT payload: the profile projection plus registered claims.
type Claims struct {
	models.SessionClaims
	jwt.RegisteredClaims
}

// Config configures an Issuer.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	// TTL of issued tokens. Zero issues tokens without an expiry claim.
	TTL time.Duration
}

// Issuer signs and verifies HS256 tokens with a process-wide key.
// It is immutable after construction.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("JWT secret not configured")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = DefaultAudience
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("token TTL must not be negative, got %s", cfg.TTL)
	}
	return &Issuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}, nil
}

// Issue signs claims into a bearer token.
func (i *Issuer) Issue(claims models.SessionClaims) (string, error) {
	now := i.now()
	registered := jwt.RegisteredClaims{
		Subject:   claims.Name,
		Issuer:    i.issuer,
		Audience:  jwt.ClaimStrings{i.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	if i.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionClaims:    claims,
		RegisteredClaims: registered,
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer, audience and time claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Name == "" || claims.Subject != claims.Name {
		return nil, fmt.Errorf("%w: subject does not match profile name", ErrInvalidToken)
	}
	return claims, nil
}
