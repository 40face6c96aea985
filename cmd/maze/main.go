// maze is a tilt maze played in the terminal: tilt the board, roll the ball
// past the holes and into the goal.
//
// Usage:
//
//	maze play [mode]         - Play a mode (default: maze)
//	maze menu                - Start menu to pick a mode interactively
//	maze levels              - List the playable levels
//	maze check [paths...]    - Validate level files
//	maze scores [level]      - Show best times
//	maze serve               - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible level order
//	--db <path>          - Set database path (default: ~/.tiltmaze/runs.db)
//	--config <path>      - Use a custom maze.yaml
//	--levels <dir>       - Load levels from a directory instead of the built-in set
//	--difficulty <name>  - Apply a preset: easy, normal, hard
//	--log-level <level>  - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/maze"
	"github.com/zavo/tiltmaze/internal/storage"

	// Import the maze modes to register them
	_ "github.com/zavo/tiltmaze/internal/games/tiltmaze"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagLevelsDir  string
	flagDifficulty string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "maze",
	Short: "Tilt Maze - Roll a ball into the goal in your terminal",
	Long: `Tilt Maze is a terminal ball-in-a-maze game. Tilt the board with the
keyboard or a phone, steer the ball around the holes and drop it into the goal.

Available commands:
  play     - Play a mode directly
  menu     - Interactive mode picker
  levels   - List the playable levels
  check    - Validate level files
  scores   - View best times
  serve    - Start SSH server for remote play

Examples:
  maze play
  maze play maze_campaign --start 02-zigzag
  maze play --sensor
  maze check ./my-levels
  maze serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom maze config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels", "", "Directory of level files (default: built-in levels)")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the maze config and applies the global flags on top.
func loadConfig() (config.MazeConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.MazeConfig{}, err
	}

	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return config.MazeConfig{}, fmt.Errorf("unknown difficulty %q (easy, normal, hard)", flagDifficulty)
		}
		config.ApplyPreset(&cfg, preset)
	}
	if flagLevelsDir != "" {
		cfg.Levels.Dir = flagLevelsDir
	}

	if err := cfg.Validate(); err != nil {
		return config.MazeConfig{}, err
	}
	return cfg, nil
}

// newLogger writes to stderr, or to ~/.tiltmaze/maze.log when toFile is set
// so that log lines do not tear the TUI. The returned func closes the file.
func newLogger(prefix string, toFile bool) (*log.Logger, func()) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
		level = log.InfoLevel
	}

	out, closeFn := os.Stderr, func() {}
	if toFile {
		if f, err := openLogFile(); err == nil {
			out, closeFn = f, func() { f.Close() }
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn
}

func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".tiltmaze")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "maze.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// openStore opens the runs database. Failure is not fatal: the game still
// works, it just does not keep history.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}

// recorder returns a Recorder that stores finished attempts in store.
func recorder(store *storage.Store, logger *log.Logger) func(maze.Result) {
	if store == nil {
		return nil
	}
	return func(res maze.Result) {
		id, err := store.RecordRun(res)
		if err != nil {
			logger.Error("cannot record run", "level", res.LevelID, "error", err)
			return
		}
		logger.Debug("run recorded", "id", id, "level", res.LevelID, "outcome", res.Outcome, "duration", res.Duration)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
