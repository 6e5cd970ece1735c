package bridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

// loopHandler records events and the goroutine-exclusive state they touch.
type loopHandler struct {
	events []int // positive = score update, negative = game over (negated)
	over   chan struct{}
}

func (h *loopHandler) ScoreUpdate(v int) { h.events = append(h.events, v) }
func (h *loopHandler) GameOver(v int) {
	h.events = append(h.events, -v-1)
	close(h.over)
}

func startLoop(t *testing.T, buffer int) *Loop {
	t.Helper()
	loop := NewLoop(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)
	return loop
}

func TestLoopRunsInOrder(t *testing.T) {
	loop := startLoop(t, 4)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if !loop.Post(func() { got = append(got, i) }) {
			t.Fatal("Post() failed on a running loop")
		}
	}

	var snapshot []int
	loop.Do(func() { snapshot = append(snapshot, got...) })

	if len(snapshot) != 100 {
		t.Fatalf("Expected 100 tasks run, got %d", len(snapshot))
	}
	for i, v := range snapshot {
		if v != i {
			t.Fatalf("Task %d ran at position %d", v, i)
		}
	}
}

func TestLoopPostAfterStop(t *testing.T) {
	loop := NewLoop(1)
	loop.Stop()
	loop.Stop() // idempotent

	if loop.Post(func() {}) {
		t.Error("Post() should fail after Stop")
	}
	if loop.Do(func() {}) {
		t.Error("Do() should fail after Stop")
	}
}

func TestLoopStopsOnContext(t *testing.T) {
	loop := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	select {
	case <-loop.Done():
	default:
		t.Error("Done should be closed after Run returns")
	}
}

func TestBridgeKeepsArrivalOrder(t *testing.T) {
	loop := startLoop(t, 2)
	b := New(loop, nil)
	h := &loopHandler{over: make(chan struct{})}
	b.Attach(h)

	// Engine context: a single goroutine emitting a burst larger than the buffer.
	go func() {
		for v := 1; v <= 50; v++ {
			b.ScoreUpdate(v)
		}
		b.GameOver(50)
	}()

	select {
	case <-h.over:
	case <-time.After(2 * time.Second):
		t.Fatal("game over never delivered")
	}

	var events []int
	loop.Do(func() { events = append(events, h.events...) })

	if len(events) != 51 {
		t.Fatalf("Expected 51 events, got %d", len(events))
	}
	for i := 0; i < 50; i++ {
		if events[i] != i+1 {
			t.Fatalf("Event %d = %d, expected %d", i, events[i], i+1)
		}
	}
	if events[50] != -51 {
		t.Errorf("Last event should be game over 50, got %d", events[50])
	}
}

func TestBridgeClampsNegative(t *testing.T) {
	loop := startLoop(t, 4)
	b := New(loop, nil)
	h := &loopHandler{over: make(chan struct{})}
	b.Attach(h)

	b.ScoreUpdate(-3)
	b.GameOver(-9)

	<-h.over
	var events []int
	loop.Do(func() { events = append(events, h.events...) })

	if len(events) != 2 || events[0] != 0 || events[1] != -1 {
		t.Errorf("Negative values should clamp to 0, got %v", events)
	}
}

func TestBridgeDropsBeforeAttach(t *testing.T) {
	loop := startLoop(t, 4)
	b := New(loop, nil)

	b.ScoreUpdate(5) // no handler yet, must not panic

	h := &loopHandler{over: make(chan struct{})}
	b.Attach(h)
	b.GameOver(1)
	<-h.over

	var events []int
	loop.Do(func() { events = append(events, h.events...) })
	if len(events) != 1 {
		t.Errorf("Only the post-attach event should arrive, got %v", events)
	}
}

func TestBridgeConcurrentEnginesSerialized(t *testing.T) {
	loop := startLoop(t, 8)
	b := New(loop, nil)

	// Not goroutine safe on purpose: the loop must serialize access.
	counter := &countingHandler{}
	b.Attach(counter)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				b.ScoreUpdate(i)
			}
		}()
	}
	wg.Wait()

	var n int
	loop.Do(func() { n = counter.n })
	if n != 1000 {
		t.Errorf("Expected 1000 deliveries, got %d", n)
	}
}

type countingHandler struct{ n int }

func (c *countingHandler) ScoreUpdate(int) { c.n++ }
func (c *countingHandler) GameOver(int)    { c.n++ }
