package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// LocalScope is the profile scope of the player sitting at this install.
const LocalScope = "local"

// Profile is the key/value view of one identity scope.
type Profile struct {
	store *Store
	scope string
}

// Profile returns the key/value store for the given scope.
// An empty scope means LocalScope.
func (s *Store) Profile(scope string) *Profile {
	if scope == "" {
		scope = LocalScope
	}
	return &Profile{store: s, scope: scope}
}

// Scope returns the scope name.
func (p *Profile) Scope() string {
	return p.scope
}

// Get returns the value for key and whether it exists.
func (p *Profile) Get(ctx context.Context, key string) (string, bool, error) {
	if p.store.isClosed() {
		return "", false, ErrClosed
	}

	var value string
	err := p.store.db.QueryRowContext(ctx,
		"SELECT value FROM profile WHERE scope = ? AND key = ?",
		p.scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read profile key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (p *Profile) Set(ctx context.Context, key, value string) error {
	if p.store.isClosed() {
		return ErrClosed
	}

	_, err := p.store.db.ExecContext(ctx,
		`INSERT INTO profile (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (scope, key) DO UPDATE SET value = excluded.value`,
		p.scope, key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write profile key %q: %w", key, err)
	}
	return nil
}

// SetIfAbsent stores value under key only when the key does not exist yet,
// then returns whatever value the key holds afterwards.
func (p *Profile) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	if p.store.isClosed() {
		return "", ErrClosed
	}

	_, err := p.store.db.ExecContext(ctx,
		`INSERT INTO profile (scope, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (scope, key) DO NOTHING`,
		p.scope, key, value,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot write profile key %q: %w", key, err)
	}

	stored, ok, err := p.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("storage: profile key %q vanished after write", key)
	}
	return stored, nil
}
