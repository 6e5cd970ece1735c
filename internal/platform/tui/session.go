package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/demonjump/internal/bridge"
	"github.com/vovakirdan/demonjump/internal/config"
	"github.com/vovakirdan/demonjump/internal/engine"
	"github.com/vovakirdan/demonjump/internal/identity"
	"github.com/vovakirdan/demonjump/internal/shell"
	"github.com/vovakirdan/demonjump/internal/storage"
)

// SessionConfig describes one player's session.
type SessionConfig struct {
	Store  *storage.Store
	Scope  string // Identity scope: storage.LocalScope or "ssh:<user>"
	Engine config.EngineConfig
	Buffer int
	TopN   int
	Logger *log.Logger
}

// Session wires one player: a UI loop, the controller it owns, the engine
// behind a bridge, and a feed of snapshots for the view.
type Session struct {
	loop   *bridge.Loop
	ctrl   *shell.Controller
	engine engine.Engine
	feed   *snapshotFeed
	cancel context.CancelFunc
	logger *log.Logger

	closeOnce sync.Once
}

// NewSession resolves the player's identity, starts the engine and the loop.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Scope == "" {
		cfg.Scope = storage.LocalScope
	}

	id, err := identity.Load(ctx, cfg.Store.Profile(cfg.Scope))
	if err != nil {
		return nil, fmt.Errorf("cannot load identity for %s: %w", cfg.Scope, err)
	}

	loop := bridge.NewLoop(cfg.Buffer)
	events := bridge.New(loop, logger)

	eng, err := openEngine(ctx, cfg.Engine, events, logger)
	if err != nil {
		return nil, err
	}

	ctrl := shell.New(shell.Config{
		Leaderboard: cfg.Store,
		Identity:    id,
		Engine:      eng,
		Loop:        loop,
		Logger:      logger,
		TopN:        cfg.TopN,
	})
	events.Attach(ctrl)

	feed := newSnapshotFeed()
	ctrl.Subscribe(feed.send)

	runCtx, cancel := context.WithCancel(context.Background())
	go loop.Run(runCtx)
	loop.Post(func() { feed.send(ctrl.Snapshot()) })

	return &Session{
		loop:   loop,
		ctrl:   ctrl,
		engine: eng,
		feed:   feed,
		cancel: cancel,
		logger: logger.With("scope", cfg.Scope),
	}, nil
}

// openEngine picks the engine named in cfg.
func openEngine(ctx context.Context, cfg config.EngineConfig, listener engine.Listener, logger *log.Logger) (engine.Engine, error) {
	switch cfg.Kind {
	case config.EngineRemote:
		remote, err := engine.DialRemote(ctx, cfg.URL, listener, logger)
		if err != nil {
			return nil, err
		}
		return remote, nil
	case config.EngineDemo, "":
		return engine.NewDemo(engine.DemoConfig{
			TickRate: cfg.TickRate,
			MinTicks: cfg.MinTicks,
			MaxTicks: cfg.MaxTicks,
			MaxStep:  cfg.MaxStep,
		}, listener), nil
	default:
		return nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
	}
}

// Dispatch forwards a player command to the controller.
func (s *Session) Dispatch(cmd shell.Command) {
	s.loop.Post(func() { s.ctrl.Dispatch(cmd) })
}

// SubmitUsername forwards a name from the prompt. A rejected name comes back
// as PromptError on the next snapshot.
func (s *Session) SubmitUsername(name string) {
	s.loop.Post(func() {
		if err := s.ctrl.SubmitUsername(name); err != nil {
			s.logger.Debug("username rejected", "error", err)
		}
	})
}

// Snapshots delivers the latest controller state. Intermediate states may be
// skipped when the view falls behind; the channel closes with the session.
func (s *Session) Snapshots() <-chan shell.Snapshot {
	return s.feed.events
}

// Close stops the engine, lets pending score writes land and stops the loop.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if closer, ok := s.engine.(engine.Closer); ok {
			err = closer.Close()
		}
		s.loop.Do(s.ctrl.Shutdown)
		s.ctrl.Wait()
		s.cancel()
		s.loop.Stop()
		s.feed.close()
	})
	return err
}

// snapshotFeed hands snapshots from the loop to the view without blocking the
// loop: when the view is behind, the stale snapshot is replaced.
type snapshotFeed struct {
	mu     sync.Mutex
	events chan shell.Snapshot
	closed bool
}

func newSnapshotFeed() *snapshotFeed {
	return &snapshotFeed{events: make(chan shell.Snapshot, 1)}
}

func (f *snapshotFeed) send(snap shell.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	select {
	case f.events <- snap:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-f.events:
		default:
		}
		select {
		case f.events <- snap:
		default:
		}
	}
}

func (f *snapshotFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}
