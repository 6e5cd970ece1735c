package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/demonjump/internal/platform/tui"
	"github.com/vovakirdan/demonjump/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Open the start menu and play.

Controls:
  Enter      - Start a game (menu), save your name (prompt)
  Tab        - Leaderboard (menu)
  R          - Retry (after game over)
  Esc/B      - Back to the menu
  Q/Ctrl+C   - Quit

The first finished game asks for a player name (2-16 characters).
Later games are recorded under that name right away.

Examples:
  demonjump play
  demonjump play --db ./scores.db
  demonjump play --config ./remote-engine.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}

	// Logs go to stderr under the alternate screen; keep them quiet unless asked.
	if flagLogLevel == "" && cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger := newLogger(cfg, "demonjump")

	store, err := openStore(cfg, logger)
	if err != nil {
		exitf("opening game database: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := tui.NewSession(ctx, tui.SessionConfig{
		Store:  store,
		Scope:  storage.LocalScope,
		Engine: cfg.Engine,
		Buffer: cfg.Bridge.Buffer,
		TopN:   cfg.Leaderboard.TopN,
		Logger: logger,
	})
	if err != nil {
		store.Close()
		exitf("starting session: %v", err)
	}
	defer session.Close()

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	if err := tui.Run(ctx, session, width, height); err != nil && ctx.Err() == nil {
		logger.Error("terminal UI failed", "error", err)
	}
}
