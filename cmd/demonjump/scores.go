package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var flagLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top scores, best first. Ties go to the earlier run.

Examples:
  demonjump scores
  demonjump scores --limit 5`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 0, "Number of scores to show (default: leaderboard.top_n)")
}

func runScores(_ *cobra.Command, _ []string) {
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

	limit := flagLimit
	if limit <= 0 {
		limit = cfg.Leaderboard.TopN
	}

	ctx := context.Background()
	scores, err := store.TopScores(ctx, limit)
	if err != nil {
		store.Close()
		exitf("retrieving scores: %v", err)
	}

	fmt.Println("High Scores")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'demonjump play' to set the first high score!")
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
	fmt.Printf("  %-4s  %-16s  %-10s  %s\n", "----", "------", "-----", "----")

	for i, entry := range scores {
		dateStr := entry.AchievedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-16s  %-10d  %s\n", i+1, entry.Username, entry.Score, dateStr)
	}

	fmt.Println()
	if total, err := store.Count(ctx); err == nil {
		fmt.Printf("Games recorded: %d\n", total)
	}
}
