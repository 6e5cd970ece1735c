// Package engine defines the narrow boundary to the native gameplay engine
// and provides adapters that sit on the other side of it.
//
// The engine runs on its own goroutine(s). Commands flow in through Engine;
// events flow out through Listener, called from the engine's goroutine.
package engine

// Engine is the command side of the boundary.
type Engine interface {
	// Start begins a new game.
	Start()

	// Restart resets engine-side state for a new attempt.
	Restart()
}

// Listener receives engine events. Implementations must not assume they are
// called on any particular goroutine.
type Listener interface {
	// ScoreUpdate reports the live score of the running game.
	ScoreUpdate(value int)

	// GameOver reports the final score. No further ScoreUpdate follows for that game.
	GameOver(finalScore int)
}

// Closer is implemented by engines that hold goroutines or connections.
type Closer interface {
	Close() error
}
