package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/core"
	"github.com/zavo/tiltmaze/internal/games/tiltmaze"
	"github.com/zavo/tiltmaze/internal/haptics"
	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/platform/tui"
	"github.com/zavo/tiltmaze/internal/registry"
	"github.com/zavo/tiltmaze/internal/sensor"
)

var (
	flagSensor     bool
	flagSensorAddr string
	flagStart      string
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play the maze",
	Long: `Start playing the tilt maze.

Modes:
  maze           - Random level after every goal (default)
  maze_campaign  - Every level in ID order, wrapping around

Controls:
  Arrows/WASD  - Tilt the board
  C            - Level the board
  Space/Enter  - Retry after a hole, next level after the goal
  P            - Pause
  Q/Ctrl+C     - Quit

With --sensor a WebSocket server accepts orientation readings from a phone
at ws://<host><addr>/orientation, as JSON {"azimuth":0,"pitch":0,"roll":0}
in radians. The keyboard keeps working alongside it.

Examples:
  maze play
  maze play maze_campaign --start 03-minefield
  maze play --difficulty hard
  maze play --levels ./my-levels
  maze play --sensor --sensor-addr :9000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagSensor, "sensor", false, "Accept orientation readings over WebSocket")
	playCmd.Flags().StringVar(&flagSensorAddr, "sensor-addr", "", "Sensor server address (default: sensor.address from config)")
	playCmd.Flags().StringVar(&flagStart, "start", "", "Campaign level ID to start from")
}

func runPlay(_ *cobra.Command, args []string) {
	mode := string(tiltmaze.ModeRandom)
	if len(args) > 0 {
		mode = args[0]
	}
	if !registry.Exists(mode) {
		fatalf("unknown mode %q (maze, maze_campaign)", mode)
	}

	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	// Deferred cleanup must run before exiting
	if err := play(mode, cfg); err != nil {
		fatalf("%v", err)
	}
}

func play(mode string, cfg config.MazeConfig) error {
	logger, closeLog := newLogger("maze", true)
	defer closeLog()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	feedback := haptics.New(cfg.Haptics, logger)
	defer haptics.Close()

	tiltmaze.Configure(tiltmaze.Options{
		Config:   cfg,
		Levels:   levels.Open(cfg.Levels.Dir),
		Feedback: feedback,
		Logger:   logger,
		Recorder: recorder(store, logger),
		Start:    flagStart,
	})

	game, err := registry.Create(mode)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	rc := core.DefaultConfig()
	rc.TickRate = flagFPS
	rc.Seed = flagSeed
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW, rc.ScreenH = w, h
	}

	if !flagSensor {
		return tui.Run(game, rc)
	}

	addr := flagSensorAddr
	if addr == "" {
		addr = cfg.Sensor.Address
	}
	srv := sensor.NewServer(addr, game.(*tiltmaze.Game), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		// The sensor server stops with the TUI
		defer cancel()
		return tui.Run(game, rc, tea.WithContext(ctx))
	})

	if err := g.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
