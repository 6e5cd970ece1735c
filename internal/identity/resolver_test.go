package identity

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/demonjump/internal/storage"
)

func openStore(t *testing.T, dbPath string) *storage.Store {
	t.Helper()
	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	return store
}

func TestUserIDIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "id.db")
	ctx := context.Background()

	store := openStore(t, dbPath)
	r := New(store.Profile(""))

	first, err := r.GetOrCreateUserID(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateUserID() failed: %v", err)
	}
	if first == "" {
		t.Fatal("GetOrCreateUserID() returned empty id")
	}

	second, _ := r.GetOrCreateUserID(ctx)
	if second != first {
		t.Errorf("Second call returned %q, expected %q", second, first)
	}

	// Simulated restart: new store handle, new resolver.
	store.Close()
	store = openStore(t, dbPath)
	defer store.Close()

	again, err := New(store.Profile("")).GetOrCreateUserID(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateUserID() after restart failed: %v", err)
	}
	if again != first {
		t.Errorf("User id changed across restart: %q -> %q", first, again)
	}
}

func TestUsernameAbsentUntilSet(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "name.db"))
	defer store.Close()
	ctx := context.Background()

	r, err := Load(ctx, store.Profile(""))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if r.UserID() == "" {
		t.Error("Load() should create the user id")
	}
	if _, ok := r.Username(); ok {
		t.Fatal("Username should be absent on a fresh install")
	}

	if err := r.SetUsername(ctx, "  Alice  "); err != nil {
		t.Fatalf("SetUsername() failed: %v", err)
	}
	name, ok := r.Username()
	if !ok || name != "Alice" {
		t.Errorf("Username() = %q, %v; expected trimmed \"Alice\"", name, ok)
	}

	// Persisted for the next session.
	reloaded, err := Load(ctx, store.Profile(""))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if name, ok := reloaded.Username(); !ok || name != "Alice" {
		t.Errorf("Reloaded username = %q, %v", name, ok)
	}
}

func TestSetUsernameValidation(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "valid.db"))
	defer store.Close()
	ctx := context.Background()

	r, err := Load(ctx, store.Profile(""))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"one char", "a", false},
		{"whitespace only", "    ", false},
		{"one char padded", "  a  ", false},
		{"two chars", "Al", true},
		{"sixteen chars", strings.Repeat("x", 16), true},
		{"seventeen chars", strings.Repeat("x", 17), false},
		{"sixteen runes multibyte", strings.Repeat("é", 16), true},
		{"padded sixteen", "  " + strings.Repeat("y", 16) + "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.SetUsername(ctx, tt.input)
			if tt.valid && err != nil {
				t.Errorf("SetUsername(%q) failed: %v", tt.input, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidLength) {
				t.Errorf("SetUsername(%q) error = %v, expected ErrInvalidLength", tt.input, err)
			}
		})
	}
}

func TestInvalidNameKeepsPrevious(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "keep.db"))
	defer store.Close()
	ctx := context.Background()

	r, _ := Load(ctx, store.Profile(""))
	r.SetUsername(ctx, "Bob")
	r.SetUsername(ctx, "x")

	if name, _ := r.Username(); name != "Bob" {
		t.Errorf("Failed SetUsername should not change the name, got %q", name)
	}
}

func TestScopesHaveDistinctIdentities(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "scopes.db"))
	defer store.Close()
	ctx := context.Background()

	local, err := Load(ctx, store.Profile(""))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	remote, err := Load(ctx, store.Profile("ssh:carol"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if local.UserID() == remote.UserID() {
		t.Error("Different scopes should get different user ids")
	}
}
