package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func record(user, session string, score int) ScoreRecord {
	return ScoreRecord{
		UserID:    user,
		SessionID: session,
		Username:  "player-" + user,
		Score:     score,
	}
}

func TestStoreOpenClose(t *testing.T) {
	_, dbPath := openTestStore(t)

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreInsertAssignsFields(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	saved, err := store.Insert(ctx, record("u1", "s1", 120))
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if saved.RecordID == "" {
		t.Error("Insert() should generate a record id")
	}
	if saved.AchievedAt.IsZero() {
		t.Error("Insert() should assign achievedAt")
	}

	scores, err := store.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("Expected 1 score, got %d", len(scores))
	}
	got := scores[0]
	if got.RecordID != saved.RecordID || got.UserID != "u1" || got.SessionID != "s1" ||
		got.Username != "player-u1" || got.Score != 120 {
		t.Errorf("Stored record mismatch: %+v", got)
	}
	if !got.AchievedAt.Equal(saved.AchievedAt) {
		t.Errorf("achievedAt = %v, expected %v", got.AchievedAt, saved.AchievedAt)
	}
}

func TestStoreRanking(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for i, score := range []int{50, 200, 75} {
		if _, err := store.Insert(ctx, record("u", fmt.Sprintf("s%d", i), score)); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	scores, err := store.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 scores with limit, got %d", len(scores))
	}
	if scores[0].Score != 200 || scores[1].Score != 75 {
		t.Errorf("Scores not in expected order: %d, %d", scores[0].Score, scores[1].Score)
	}
}

func TestStoreTiesBrokenByEarliest(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// Frozen clock: the store must still order the inserts.
	frozen := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time { return frozen }

	first, _ := store.Insert(ctx, record("a", "s1", 100))
	second, _ := store.Insert(ctx, record("b", "s2", 100))
	store.Insert(ctx, record("c", "s3", 90))

	if !second.AchievedAt.After(first.AchievedAt) {
		t.Fatalf("achievedAt should be strictly increasing: %v then %v", first.AchievedAt, second.AchievedAt)
	}

	scores, err := store.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if scores[0].SessionID != "s1" || scores[1].SessionID != "s2" || scores[2].SessionID != "s3" {
		t.Errorf("Unexpected tie order: %s, %s, %s", scores[0].SessionID, scores[1].SessionID, scores[2].SessionID)
	}
}

func TestStoreInsertNeverOverwrites(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, record("u1", "s1", 10)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	// Same session again must be rejected, not replaced.
	_, err := store.Insert(ctx, record("u1", "s1", 999))
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("Expected ErrWriteFailed for duplicate session, got %v", err)
	}

	// Same user, new session is a new row.
	if _, err := store.Insert(ctx, record("u1", "s2", 20)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 records, got %d", n)
	}

	scores, _ := store.TopScores(ctx, 10)
	if scores[0].Score != 20 || scores[1].Score != 10 {
		t.Errorf("Existing record was modified: %+v", scores)
	}
}

func TestStoreInsertValidation(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	cases := []ScoreRecord{
		record("", "s1", 1),
		record("u1", "", 1),
		record("u1", "s1", -5),
	}
	for _, rec := range cases {
		if _, err := store.Insert(ctx, rec); !errors.Is(err, ErrWriteFailed) {
			t.Errorf("Insert(%+v) error = %v, expected ErrWriteFailed", rec, err)
		}
	}
}

func TestStoreInsertAfterClose(t *testing.T) {
	store, _ := openTestStore(t)
	store.Close()

	_, err := store.Insert(context.Background(), record("u1", "s1", 1))
	if !errors.Is(err, ErrWriteFailed) || !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrWriteFailed wrapping ErrClosed, got %v", err)
	}
}

func TestStoreDurableAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "durable.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	store.Insert(ctx, record("u1", "s1", 300))
	store.Profile("").Set(ctx, "username", "Alice")
	store.Close()

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	scores, err := reopened.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 300 {
		t.Errorf("Scores did not survive reopen: %+v", scores)
	}

	name, ok, err := reopened.Profile("").Get(ctx, "username")
	if err != nil || !ok || name != "Alice" {
		t.Errorf("Profile did not survive reopen: %q %v %v", name, ok, err)
	}
}

func TestStorePlayerStats(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	stats, err := store.PlayerStats(ctx, "nobody")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats != nil {
		t.Errorf("Expected nil stats for unknown user, got %+v", stats)
	}

	store.Insert(ctx, ScoreRecord{UserID: "u1", SessionID: "s1", Username: "Old", Score: 40})
	store.Insert(ctx, ScoreRecord{UserID: "u1", SessionID: "s2", Username: "New", Score: 90})
	store.Insert(ctx, ScoreRecord{UserID: "u1", SessionID: "s3", Username: "New", Score: 60})
	store.Insert(ctx, ScoreRecord{UserID: "u2", SessionID: "s4", Username: "Other", Score: 500})

	stats, err = store.PlayerStats(ctx, "u1")
	if err != nil {
		t.Fatalf("PlayerStats() failed: %v", err)
	}
	if stats.GamesPlayed != 3 {
		t.Errorf("GamesPlayed = %d, expected 3", stats.GamesPlayed)
	}
	if stats.BestScore != 90 {
		t.Errorf("BestScore = %d, expected 90", stats.BestScore)
	}
	if stats.Username != "New" {
		t.Errorf("Username = %q, expected latest name", stats.Username)
	}
	if stats.LastPlayed.Before(stats.FirstPlayed) {
		t.Errorf("LastPlayed %v before FirstPlayed %v", stats.LastPlayed, stats.FirstPlayed)
	}
}

func TestProfileScopes(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	local := store.Profile("")
	remote := store.Profile("ssh:bob")

	if local.Scope() != LocalScope {
		t.Errorf("Empty scope should map to %q, got %q", LocalScope, local.Scope())
	}

	if err := local.Set(ctx, "username", "Al"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, ok, _ := remote.Get(ctx, "username"); ok {
		t.Error("Scopes should not share keys")
	}

	// Set replaces
	local.Set(ctx, "username", "Alice")
	if v, _, _ := local.Get(ctx, "username"); v != "Alice" {
		t.Errorf("Set() should replace value, got %q", v)
	}
}

func TestProfileSetIfAbsent(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	p := store.Profile("")

	first, err := p.SetIfAbsent(ctx, "userId", "one")
	if err != nil {
		t.Fatalf("SetIfAbsent() failed: %v", err)
	}
	second, err := p.SetIfAbsent(ctx, "userId", "two")
	if err != nil {
		t.Fatalf("SetIfAbsent() failed: %v", err)
	}
	if first != "one" || second != "one" {
		t.Errorf("SetIfAbsent() should keep the first value, got %q then %q", first, second)
	}
}
