package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/core"
	"github.com/zavo/tiltmaze/internal/games/tiltmaze"
	"github.com/zavo/tiltmaze/internal/haptics"
	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/platform/tui"
	"github.com/zavo/tiltmaze/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a mode picker menu",
	Long: `Start the maze in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a mode.
Leaving a game returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select mode
  Tab          - Best times
  Q            - Quit

Examples:
  maze menu
  maze menu --fps 30
  maze menu --db ./runs.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	if err := menu(cfg); err != nil {
		fatalf("%v", err)
	}
}

func menu(cfg config.MazeConfig) error {
	logger, closeLog := newLogger("maze", true)
	defer closeLog()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	feedback := haptics.New(cfg.Haptics, logger)
	defer haptics.Close()

	loader := levels.Open(cfg.Levels.Dir)
	known, err := loader.ListIDs()
	if err != nil {
		logger.Warn("no levels to list", "dir", loader.Root(), "error", err)
	}

	tiltmaze.Configure(tiltmaze.Options{
		Config:   cfg,
		Levels:   loader,
		Feedback: feedback,
		Logger:   logger,
		Recorder: recorder(store, logger),
	})

	rc := core.DefaultConfig()
	rc.TickRate = flagFPS
	rc.Seed = flagSeed
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW, rc.ScreenH = w, h
	}

	for {
		result, err := tui.RunMenu(rc)
		if err != nil {
			return err
		}
		rc = result.Config

		if result.Quit {
			return nil
		}

		if result.WantsScoreboard {
			goBack, err := tui.RunScoreboard(store, known, rc.ScreenW, rc.ScreenH)
			if err != nil {
				return err
			}
			if goBack {
				continue
			}
			return nil
		}

		if result.GameID == "" {
			return nil
		}

		game, err := registry.Create(result.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		// A fresh level order for every game unless pinned
		if flagSeed == 0 {
			rc.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(game, rc); err != nil {
			return fmt.Errorf("running game: %w", err)
		}
	}
}
