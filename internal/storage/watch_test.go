package storage

import (
	"context"
	"testing"
	"time"
)

func nextRanking(t *testing.T, ch <-chan []ScoreRecord) []ScoreRecord {
	t.Helper()
	select {
	case entries, ok := <-ch:
		if !ok {
			t.Fatal("ranking channel closed unexpectedly")
		}
		return entries
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ranking")
	}
	return nil
}

func TestWatchEmitsCurrentThenChanges(t *testing.T) {
	store, _ := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store.Insert(ctx, record("u", "s1", 10))

	ch := store.WatchTopScores(ctx, 2)

	initial := nextRanking(t, ch)
	if len(initial) != 1 || initial[0].Score != 10 {
		t.Fatalf("Initial emission should be current state, got %+v", initial)
	}

	store.Insert(ctx, record("u", "s2", 30))
	updated := nextRanking(t, ch)
	if len(updated) != 2 || updated[0].Score != 30 || updated[1].Score != 10 {
		t.Fatalf("Expected [30 10] after insert, got %+v", updated)
	}

	store.Insert(ctx, record("u", "s3", 20))
	capped := nextRanking(t, ch)
	if len(capped) != 2 || capped[0].Score != 30 || capped[1].Score != 20 {
		t.Fatalf("Expected [30 20] capped at limit, got %+v", capped)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	store, _ := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := store.WatchTopScores(ctx, 5)
	nextRanking(t, ch)

	cancel()

	// Drain until closed; no emission may follow an insert after cancel.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				store.Insert(context.Background(), record("u", "late", 1))
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestWatchClosedWithStore(t *testing.T) {
	store, _ := openTestStore(t)

	ch := store.WatchTopScores(context.Background(), 5)
	nextRanking(t, ch)

	store.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("no ranking should be delivered after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed after store close")
	}
}

func TestWatchFreshSubscriptionSeesCurrentState(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	first, cancel := context.WithCancel(ctx)
	nextRanking(t, store.WatchTopScores(first, 5))
	cancel()

	store.Insert(ctx, record("u", "s1", 42))

	second, cancel2 := context.WithCancel(ctx)
	defer cancel2()
	entries := nextRanking(t, store.WatchTopScores(second, 5))
	if len(entries) != 1 || entries[0].Score != 42 {
		t.Errorf("Fresh subscription should start from current state, got %+v", entries)
	}
}
