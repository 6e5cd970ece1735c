// demonjump is the persistence and UI shell around the Demon Jump game engine.
//
// Usage:
//
//	demonjump play              - Play in this terminal
//	demonjump scores            - Show the leaderboard
//	demonjump profile           - Show or set this install's player name
//	demonjump serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.demonjump/config.yaml, ./configs/demonjump.yaml)
//	--db <path>         - Database path (overrides config)
//	--log-level <level> - debug, info, warn or error (overrides config)
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/demonjump/internal/config"
	"github.com/vovakirdan/demonjump/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "demonjump",
	Short: "Demon Jump - play, keep score, climb the leaderboard",
	Long: `Demon Jump wraps the game engine with a start menu, a live score,
a one-time player name prompt and a persistent leaderboard.

Available commands:
  play     - Play in this terminal
  scores   - Show the leaderboard
  profile  - Show or set the player name
  serve    - Start SSH server for remote play

Examples:
  demonjump play
  demonjump scores --limit 5
  demonjump profile --set-name Ada
  demonjump serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to game database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Database = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = strings.ToLower(flagLogLevel)
	}
	return cfg, cfg.Validate()
}

// newLogger builds the root logger. Components derive prefixed children from it.
func newLogger(cfg config.Config, prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// openStore opens the configured database with logging attached.
func openStore(cfg config.Config, logger *log.Logger) (*storage.Store, error) {
	store, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	store.SetLogger(logger)
	return store, nil
}

// exitf prints an error and exits.
func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
