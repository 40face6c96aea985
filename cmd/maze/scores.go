package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/platform/tui"
	"github.com/zavo/tiltmaze/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show best times",
	Long: `Shows the fastest completions per level.

On a terminal this opens the interactive scoreboard. When output is piped,
or a level is given, the times are printed as plain text.

Examples:
  maze scores
  maze scores 02-zigzag
  maze scores | less`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatalf("opening runs database: %v", err)
	}
	defer store.Close()

	if len(args) == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}

		var known []string
		if cfg, err := loadConfig(); err == nil {
			known, _ = levels.Open(cfg.Levels.Dir).ListIDs()
		}
		if _, err := tui.RunScoreboard(store, known, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return
	}

	ids := args
	if len(ids) == 0 {
		if ids, err = store.Levels(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
	}
	if len(ids) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'maze play' to set the first time!")
		return
	}

	for i, id := range ids {
		if i > 0 {
			fmt.Println()
		}
		if err := printLevelScores(store, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
	}
}

func printLevelScores(store *storage.Store, id string) error {
	runs, err := store.BestTimes(id, 10)
	if err != nil {
		return err
	}
	stats, err := store.LevelStats(id)
	if err != nil {
		return err
	}

	fmt.Printf("Best Times - %s\n", id)
	fmt.Printf("  %d attempts, %d completed, %d lost (%.0f%%)\n",
		stats.Attempts, stats.Completions, stats.Losses, stats.CompletionRate()*100)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("  No completed runs yet.")
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-8s  %s\n", "Rank", "Time", "Date")
	fmt.Printf("  %-4s  %-8s  %s\n", "----", "----", "----")

	for i, r := range runs {
		fmt.Printf("  %-4d  %-8s  %s\n", i+1, fmt.Sprintf("%.2fs", r.Duration.Seconds()), r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
