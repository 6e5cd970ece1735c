// Package score tracks the live score of the game in progress.
package score

import "github.com/google/uuid"

// Final is the frozen result of one session, waiting to be recorded.
type Final struct {
	SessionID string
	Score     int
}

// Tracker owns the live score. It is not safe for concurrent use; the
// controller only touches it from the UI loop.
type Tracker struct {
	value     int
	sessionID string
	newID     func() string
}

// NewTracker creates a tracker with no session started.
func NewTracker() *Tracker {
	return &Tracker{
		newID: func() string { return uuid.New().String() },
	}
}

// Reset zeroes the score and begins a new session.
func (t *Tracker) Reset() {
	t.value = 0
	t.sessionID = t.newID()
}

// Update overwrites the live score with whatever the engine reported.
func (t *Tracker) Update(value int) {
	t.value = value
}

// Value returns the live score.
func (t *Tracker) Value() int {
	return t.value
}

// SessionID returns the id of the current session, or "" before the first Reset.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Finalize captures the terminal score of the current session.
// A session that was never started gets a fresh id so its record stays unique.
func (t *Tracker) Finalize(value int) Final {
	t.value = value
	if t.sessionID == "" {
		t.sessionID = t.newID()
	}
	return Final{SessionID: t.sessionID, Score: value}
}
