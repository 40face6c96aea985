package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zavo/tiltmaze/internal/maze/levels"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the playable levels",
	Long: `Shows every valid level of the active level set: the built-in levels,
or the directory given by --levels or levels.dir in the config.

Invalid files are skipped; run 'maze check' to see why.`,
	Run: runLevels,
}

func runLevels(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	loader := levels.Open(cfg.Levels.Dir)
	specs, err := loader.LoadAll()
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Levels in %s:\n", loader.Root())
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range specs {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %-6s  %-5s  %-5s  %s\n", maxIDLen, "ID", "Size", "Walls", "Holes", "Name")
	fmt.Printf("  %-*s  %-6s  %-5s  %-5s  %s\n", maxIDLen, "--", "----", "-----", "-----", "----")

	for _, s := range specs {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		fmt.Printf("  %-*s  %-6g  %-5d  %-5d  %s\n", maxIDLen, s.ID, s.Size, len(s.Walls), len(s.Holes), name)
	}

	fmt.Println()
	fmt.Println("Run 'maze play maze_campaign --start <id>' to play from a level.")
}
