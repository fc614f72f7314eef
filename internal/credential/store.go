// Package credential hashes and verifies profile passwords.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// Default argon2id parameters.
const (
	DefaultTime    = 1
	DefaultMemory  = 64 * 1024 // KiB
	DefaultThreads = 4
	SaltLen        = 16
	KeyLen         = 32
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Params configures the argon2id derivation and how many derivations may run at once.
type Params struct {
	Time        uint32
	Memory      uint32
	Threads     uint8
	Concurrency int64
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	return Params{
		Time:        DefaultTime,
		Memory:      DefaultMemory,
		Threads:     DefaultThreads,
		Concurrency: int64(2 * runtime.GOMAXPROCS(0)),
	}
}

// Store derives salted password hashes. It is safe for concurrent use.
type Store struct {
	params Params
	slots  *semaphore.Weighted

	dummySalt []byte
	dummyHash []byte
}

// NewStore creates a Store. Zero fields in p fall back to DefaultParams.
func NewStore(p Params) *Store {
	def := DefaultParams()
	if p.Time == 0 {
		p.Time = def.Time
	}
	if p.Memory == 0 {
		p.Memory = def.Memory
	}
	if p.Threads == 0 {
		p.Threads = def.Threads
	}
	if p.Concurrency <= 0 {
		p.Concurrency = def.Concurrency
	}
	return &Store{
		params:    p,
		slots:     semaphore.NewWeighted(p.Concurrency),
		dummySalt: make([]byte, SaltLen),
		dummyHash: make([]byte, KeyLen),
	}
}

// Hash generates a fresh random salt and derives the hash of password with it.
func (s *Store) Hash(ctx context.Context, password string) (hash, salt []byte, err error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}

	salt = make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}

	hash, err = s.derive(ctx, password, salt)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

// Verify recomputes the hash of candidate with salt and compares it to hash in
// constant time. A mismatch is (false, nil); an error means the derivation could
// not run at all.
func (s *Store) Verify(ctx context.Context, candidate string, salt, hash []byte) (bool, error) {
	if len(salt) == 0 || len(hash) == 0 {
		return false, nil
	}

	computed, err := s.derive(ctx, candidate, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, hash) == 1, nil
}

// VerifyDummy performs the same work as Verify against a fixed hash and always
// reports no match. Login uses it when no profile matches the email.
func (s *Store) VerifyDummy(ctx context.Context, candidate string) error {
	_, err := s.Verify(ctx, candidate, s.dummySalt, s.dummyHash)
	return err
}

func (s *Store) derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire hashing slot: %w", err)
	}
	defer s.slots.Release(1)

	return argon2.IDKey([]byte(password), salt, s.params.Time, s.params.Memory, s.params.Threads, KeyLen), nil
}
