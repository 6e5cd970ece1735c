// Package shell implements the screen state machine around the game engine:
// start menu, play, game over with name capture, and the live leaderboard.
package shell

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/demonjump/internal/engine"
	"github.com/vovakirdan/demonjump/internal/score"
	"github.com/vovakirdan/demonjump/internal/storage"
)

const (
	insertTimeout   = 10 * time.Second
	identityTimeout = 2 * time.Second
)

// Leaderboard is the part of the store the controller writes to and watches.
type Leaderboard interface {
	Insert(ctx context.Context, rec storage.ScoreRecord) (storage.ScoreRecord, error)
	WatchTopScores(ctx context.Context, limit int) <-chan []storage.ScoreRecord
}

// Identity is the player identity used to sign records.
type Identity interface {
	UserID() string
	Username() (string, bool)
	SetUsername(ctx context.Context, name string) error
}

// Poster queues work onto the UI loop. bridge.Loop implements it.
type Poster interface {
	Post(fn func()) bool
}

// Config wires a controller to its collaborators.
type Config struct {
	Leaderboard Leaderboard
	Identity    Identity
	Engine      engine.Engine
	Loop        Poster
	Logger      *log.Logger
	TopN        int
}

// Controller owns the screen state, the live score and the pending submission.
//
// Every method except Wait must run on the UI loop; engine events get there
// through a bridge.Bridge, which is why Controller implements engine.Listener.
// Storage I/O runs on worker goroutines and reports back through the loop.
type Controller struct {
	board    Leaderboard
	identity Identity
	engine   engine.Engine
	loop     Poster
	logger   *log.Logger
	topN     int

	tracker *score.Tracker
	screen  Screen

	pending    *score.Final
	promptErr  string
	save       SaveStatus
	saveTarget string // Session whose insert result is still wanted

	rows        []storage.ScoreRecord
	watchGen    int
	watchCancel context.CancelFunc

	observers []func(Snapshot)
	inflight  sync.WaitGroup
}

// New creates a controller on the start menu.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = storage.DefaultTopN
	}

	return &Controller{
		board:    cfg.Leaderboard,
		identity: cfg.Identity,
		engine:   cfg.Engine,
		loop:     cfg.Loop,
		logger:   logger.WithPrefix("shell"),
		topN:     topN,
		tracker:  score.NewTracker(),
		screen:   ScreenStartMenu,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the UI loop and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.observers = append(c.observers, fn)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	name, ok := c.identity.Username()
	snap := Snapshot{
		Screen:      c.screen,
		Score:       c.tracker.Value(),
		UserID:      c.identity.UserID(),
		Username:    name,
		HasUsername: ok,
		PromptOpen:  c.pending != nil,
		PromptError: c.promptErr,
		Save:        c.save,
	}
	if len(c.rows) > 0 {
		snap.Leaderboard = append([]storage.ScoreRecord(nil), c.rows...)
	}
	return snap
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.observers {
		fn(snap)
	}
}

// Dispatch applies a player command. Commands that do not apply to the
// current screen are ignored.
func (c *Controller) Dispatch(cmd Command) {
	switch {
	case c.screen == ScreenStartMenu && cmd == CmdStartGame:
		c.startSession()
		c.engine.Start()

	case c.screen == ScreenStartMenu && cmd == CmdOpenLeaderboard:
		c.screen = ScreenLeaderboard
		c.watchLeaderboard()

	case c.screen == ScreenGameOver && cmd == CmdRetry && c.pending == nil:
		c.startSession()
		c.engine.Restart()

	case c.screen == ScreenGameOver && cmd == CmdBackToMenu && c.pending == nil:
		c.screen = ScreenStartMenu

	case c.screen == ScreenLeaderboard && cmd == CmdClose:
		c.unwatchLeaderboard()
		c.screen = ScreenStartMenu

	default:
		c.logger.Debug("command ignored", "command", cmd, "screen", c.screen, "prompt", c.pending != nil)
		return
	}

	c.notify()
}

func (c *Controller) startSession() {
	c.tracker.Reset()
	c.screen = ScreenPlaying
	c.save = SaveNone
	c.saveTarget = ""
	c.promptErr = ""
}

// ScoreUpdate implements engine.Listener. Ignored outside of play.
func (c *Controller) ScoreUpdate(value int) {
	if c.screen != ScreenPlaying {
		return
	}
	c.tracker.Update(value)
	c.notify()
}

// GameOver implements engine.Listener. It freezes the score and either
// records it under the known name or holds it behind the name prompt.
func (c *Controller) GameOver(finalScore int) {
	if c.screen != ScreenPlaying {
		return
	}

	final := c.tracker.Finalize(finalScore)
	c.screen = ScreenGameOver

	if name, ok := c.identity.Username(); ok {
		c.submit(final, name)
	} else {
		c.pending = &final
		c.promptErr = ""
		c.save = SaveAwaitingName
	}

	c.notify()
}

// SubmitUsername sets the player name. If a finished game is waiting on the
// prompt, it is recorded under the new name and the prompt closes.
// An invalid name leaves the prompt open with the error shown.
func (c *Controller) SubmitUsername(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), identityTimeout)
	defer cancel()

	if err := c.identity.SetUsername(ctx, name); err != nil {
		if c.pending != nil {
			c.promptErr = err.Error()
			c.notify()
		}
		return err
	}

	c.promptErr = ""
	if c.pending != nil {
		final := *c.pending
		c.pending = nil
		saved, _ := c.identity.Username()
		c.submit(final, saved)
	}

	c.notify()
	return nil
}

// submit writes the record on a worker goroutine.
func (c *Controller) submit(final score.Final, username string) {
	rec := storage.ScoreRecord{
		UserID:    c.identity.UserID(),
		SessionID: final.SessionID,
		Username:  username,
		Score:     final.Score,
	}

	c.save = SaveSaving
	c.saveTarget = final.SessionID

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		defer cancel()

		_, err := c.board.Insert(ctx, rec)
		if err != nil {
			c.logger.Error("score not saved", "session", rec.SessionID, "score", rec.Score, "error", err)
		}

		if !c.loop.Post(func() { c.insertDone(rec.SessionID, err) }) {
			c.logger.Debug("insert result after shutdown", "session", rec.SessionID)
		}
	}()
}

func (c *Controller) insertDone(sessionID string, err error) {
	if sessionID != c.saveTarget {
		return
	}
	c.saveTarget = ""

	if err != nil {
		c.save = SaveFailed
	} else {
		c.save = SaveSaved
	}
	c.notify()
}

// watchLeaderboard starts a fresh subscription. Each emission is applied
// only while its generation is current and the leaderboard is on screen.
func (c *Controller) watchLeaderboard() {
	c.unwatchLeaderboard()

	c.watchGen++
	gen := c.watchGen

	ctx, cancel := context.WithCancel(context.Background())
	c.watchCancel = cancel

	updates := c.board.WatchTopScores(ctx, c.topN)
	go func() {
		for rows := range updates {
			if !c.loop.Post(func() { c.applyRanking(gen, rows) }) {
				cancel()
				return
			}
		}
	}()
}

func (c *Controller) applyRanking(gen int, rows []storage.ScoreRecord) {
	if gen != c.watchGen || c.screen != ScreenLeaderboard {
		return
	}
	c.rows = rows
	c.notify()
}

func (c *Controller) unwatchLeaderboard() {
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	c.watchGen++
	c.rows = nil
}

// Shutdown cancels the leaderboard subscription.
func (c *Controller) Shutdown() {
	c.unwatchLeaderboard()
}

// Wait blocks until every started insert has finished and posted its result.
// Must not be called from the UI loop.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

var _ engine.Listener = (*Controller)(nil)
