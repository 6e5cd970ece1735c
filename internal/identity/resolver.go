// Package identity resolves the stable per-install user id and the player's
// display name.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Profile keys.
const (
	KeyUserID   = "userId"
	KeyUsername = "username"
)

// Username length bounds, in characters, after trimming.
const (
	MinUsernameLen = 2
	MaxUsernameLen = 16
)

// ErrInvalidLength is returned when a trimmed username is outside the allowed length.
var ErrInvalidLength = errors.New("identity: username must be 2-16 characters")

// KV is the durable key/value storage behind a Resolver.
// storage.Profile implements it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetIfAbsent(ctx context.Context, key, value string) (string, error)
}

// Resolver caches the identity of one install (or one remote player scope).
// Safe for concurrent use.
type Resolver struct {
	kv    KV
	newID func() string

	mu       sync.Mutex
	userID   string
	username string
	hasName  bool
}

// New creates a resolver over kv. Nothing is read until Load or GetOrCreateUserID.
func New(kv KV) *Resolver {
	return &Resolver{
		kv:    kv,
		newID: func() string { return uuid.New().String() },
	}
}

// Load reads the persisted identity, creating the user id if this is the
// first run. After Load, UserID and Username answer from memory.
func Load(ctx context.Context, kv KV) (*Resolver, error) {
	r := New(kv)
	if _, err := r.GetOrCreateUserID(ctx); err != nil {
		return nil, err
	}

	name, ok, err := kv.Get(ctx, KeyUsername)
	if err != nil {
		return nil, fmt.Errorf("identity: cannot read username: %w", err)
	}

	r.mu.Lock()
	r.username, r.hasName = name, ok
	r.mu.Unlock()

	return r, nil
}

// GetOrCreateUserID returns the persisted user id, generating and persisting
// one the first time it is called for this install.
func (r *Resolver) GetOrCreateUserID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userID != "" {
		return r.userID, nil
	}

	id, ok, err := r.kv.Get(ctx, KeyUserID)
	if err != nil {
		return "", fmt.Errorf("identity: cannot read user id: %w", err)
	}
	if !ok {
		// Another process may win the race; whatever is stored is the id.
		id, err = r.kv.SetIfAbsent(ctx, KeyUserID, r.newID())
		if err != nil {
			return "", fmt.Errorf("identity: cannot persist user id: %w", err)
		}
	}

	r.userID = id
	return id, nil
}

// UserID returns the cached user id, or "" before Load.
func (r *Resolver) UserID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userID
}

// Username returns the display name, if one was ever set.
func (r *Resolver) Username() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.username, r.hasName
}

// SetUsername validates and persists the trimmed name.
func (r *Resolver) SetUsername(ctx context.Context, name string) error {
	trimmed, err := ValidateUsername(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Set(ctx, KeyUsername, trimmed); err != nil {
		return fmt.Errorf("identity: cannot persist username: %w", err)
	}
	r.username, r.hasName = trimmed, true
	return nil
}

// ValidateUsername trims surrounding whitespace and checks the length.
// Returns the trimmed name.
func ValidateUsername(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return "", ErrInvalidLength
	}
	return trimmed, nil
}
