package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/games/tiltmaze"
	"github.com/zavo/tiltmaze/internal/haptics"
	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the maze SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session with the mode picker menu.
Runs are stored per-server (all users share the same best times).
Haptic feedback is not played for remote sessions.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.tiltmaze/host_key

Examples:
  maze serve                           # Listen on :23234 with auto-generated key
  maze serve --ssh :2222               # Listen on port 2222
  maze serve --host-key ./my_host_key  # Use specific host key
  maze serve --db ./runs.db            # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	if err := serve(cfg); err != nil {
		fatalf("%v", err)
	}
}

func serve(cfg config.MazeConfig) error {
	logger, closeLog := newLogger("maze-ssh", false)
	defer closeLog()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	loader := levels.Open(cfg.Levels.Dir)
	known, err := loader.ListIDs()
	if err != nil {
		return err
	}

	tiltmaze.Configure(tiltmaze.Options{
		Config:   cfg,
		Levels:   loader,
		Feedback: haptics.Nop{},
		Logger:   logger,
		Recorder: recorder(store, logger),
	})

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS
	sshCfg.Store = store
	sshCfg.Levels = known
	sshCfg.Logger = logger

	server, err := tui.NewSSHServer(sshCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting maze SSH server on %s\n", server.Addr())
	fmt.Printf("Serving %d level(s) from %s\n", len(known), loader.Root())
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx)
}
