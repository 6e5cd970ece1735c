package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/demonjump/internal/identity"
	"github.com/vovakirdan/demonjump/internal/storage"
)

var flagSetName string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or set the player name",
	Long: `Print this install's player id, name and record.

With --set-name the name is validated (2-16 characters after trimming)
and saved. Scores already on the leaderboard keep the name they were
recorded with.

Examples:
  demonjump profile
  demonjump profile --set-name Ada`,
	Args: cobra.NoArgs,
	Run:  runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&flagSetName, "set-name", "", "Set the player name")
}

func runProfile(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitf("%v", err)
	}
	logger := newLogger(cfg, "demonjump")

	store, err := openStore(cfg, logger)
	if err != nil {
		exitf("opening game database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	id, err := identity.Load(ctx, store.Profile(storage.LocalScope))
	if err != nil {
		store.Close()
		exitf("loading profile: %v", err)
	}

	if cmd.Flags().Changed("set-name") {
		if err := id.SetUsername(ctx, flagSetName); err != nil {
			store.Close()
			if errors.Is(err, identity.ErrInvalidLength) {
				exitf("name must be %d-%d characters", identity.MinUsernameLen, identity.MaxUsernameLen)
			}
			exitf("saving name: %v", err)
		}
	}

	fmt.Printf("Player id: %s\n", id.UserID())
	if name, ok := id.Username(); ok {
		fmt.Printf("Name:      %s\n", name)
	} else {
		fmt.Println("Name:      (not set, you will be asked after your first game)")
	}

	stats, err := store.PlayerStats(ctx, id.UserID())
	if err != nil {
		logger.Warn("cannot read player stats", "error", err)
		return
	}
	if stats == nil {
		fmt.Println("No games recorded yet.")
		return
	}

	fmt.Printf("Best:      %d\n", stats.BestScore)
	fmt.Printf("Games:     %d\n", stats.GamesPlayed)
	fmt.Printf("Last game: %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
}
