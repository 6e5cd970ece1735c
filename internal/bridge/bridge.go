package bridge

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/demonjump/internal/engine"
)

// Bridge is the engine.Listener handed to an engine. Every event is re-posted
// onto the loop before it reaches the handler, so the handler only ever runs
// on the UI loop and sees events in arrival order.
type Bridge struct {
	loop   *Loop
	logger *log.Logger

	mu      sync.RWMutex
	handler engine.Listener
}

// New creates a bridge onto loop. Events arriving before Attach are dropped.
func New(loop *Loop, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{
		loop:   loop,
		logger: logger.WithPrefix("bridge"),
	}
}

// Attach sets the UI-side handler.
func (b *Bridge) Attach(handler engine.Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// ScoreUpdate implements engine.Listener.
func (b *Bridge) ScoreUpdate(value int) {
	value = b.clamp("score_update", value)
	b.dispatch("score_update", func(h engine.Listener) { h.ScoreUpdate(value) })
}

// GameOver implements engine.Listener.
func (b *Bridge) GameOver(finalScore int) {
	finalScore = b.clamp("game_over", finalScore)
	b.dispatch("game_over", func(h engine.Listener) { h.GameOver(finalScore) })
}

// clamp keeps a contract-violating negative value from reaching storage.
// The event itself is kept: a game over must always land.
func (b *Bridge) clamp(event string, value int) int {
	if value < 0 {
		b.logger.Warn("negative value from engine, clamped to 0", "event", event, "value", value)
		return 0
	}
	return value
}

func (b *Bridge) dispatch(event string, deliver func(engine.Listener)) {
	b.mu.RLock()
	h := b.handler
	b.mu.RUnlock()

	if h == nil {
		b.logger.Debug("event before attach dropped", "event", event)
		return
	}

	if !b.loop.Post(func() { deliver(h) }) {
		b.logger.Debug("event after shutdown dropped", "event", event)
	}
}

var _ engine.Listener = (*Bridge)(nil)
