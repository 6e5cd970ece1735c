// Package bridge marshals work from arbitrary goroutines onto the single UI
// loop that owns all screen and score state.
package bridge

import (
	"context"
	"sync"
)

// DefaultBuffer is the queue size used when a non-positive size is given.
const DefaultBuffer = 64

// Loop runs posted functions one at a time, in the order they were posted,
// on the goroutine that called Run.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop with a bounded queue.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and returns false if the
// loop has stopped. Must not be called from inside the loop.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do queues fn and waits until it has run.
// Returns false if the loop stopped before fn ran.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}

	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Run consumes the queue until ctx is done or Stop is called.
// Functions still queued at that point are discarded.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()

	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			return
		case <-l.done:
			return
		}
	}
}

// Stop ends Run. Safe to call multiple times.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
