package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileJSON_OmitsCredentialMaterial(t *testing.T) {
	avatar := "https://img.example/a.png"
	p := Profile{
		ID:           7,
		Name:         "u1",
		Email:        "u1@x.io",
		PasswordHash: []byte("hash-bytes"),
		PasswordSalt: []byte("salt-bytes"),
		Avatar:       &avatar,
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))

	assert.Equal(t, "u1", out["name"])
	assert.Equal(t, avatar, out["avatar"])
	assert.Contains(t, out, "banner")
	assert.Contains(t, out, "_count")
	for _, key := range []string{"password", "passwordHash", "PasswordHash", "salt", "PasswordSalt", "id", "ID"} {
		assert.NotContains(t, out, key)
	}
	assert.NotContains(t, string(b), "hash-bytes")
	assert.NotContains(t, string(b), "c2FsdC1ieXRlcw") // base64 of the salt
}

func TestClaimsFor(t *testing.T) {
	bio := "hello"
	p := &Profile{Name: "u1", Email: "u1@x.io", Bio: &bio, PasswordHash: []byte("h"), PasswordSalt: []byte("s")}

	c := ClaimsFor(p)
	assert.Equal(t, "u1", c.Name)
	assert.Equal(t, "u1@x.io", c.Email)
	assert.Equal(t, &bio, c.Bio)
	assert.Nil(t, c.Avatar)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"u1","email":"u1@x.io","avatar":null,"banner":null,"bio":"hello"}`, string(b))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflictError("Profile already exists"))

	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
	assert.False(t, HasCode(nil, CodeConflict))
}

func TestAsAppError(t *testing.T) {
	t.Run("passes app errors through", func(t *testing.T) {
		orig := NewInvalidOperationError("You can't follow yourself")
		assert.Same(t, orig, AsAppError(fmt.Errorf("ctx: %w", orig)))
	})

	t.Run("unknown errors become store failures", func(t *testing.T) {
		appErr := AsAppError(errors.New(`pq: duplicate key value violates unique constraint "idx_profiles_email"`))
		assert.Equal(t, CodeStoreFailure, appErr.Code)
		assert.Equal(t, ErrorResponse{Message: "Internal server error"}, appErr.Response())
	})
}

func TestMediaUpdateEmpty(t *testing.T) {
	url := "https://img.example/b.png"
	assert.True(t, MediaUpdate{}.Empty())
	assert.False(t, MediaUpdate{Banner: &url}.Empty())
}
