// Package tiltmaze adapts a maze session to the platform Game interface:
// keyboard tilt, tap to retry or advance, and character-cell rendering.
package tiltmaze

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/core"
	"github.com/zavo/tiltmaze/internal/maze"
	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/registry"
)

// Mode selects how levels are picked.
type Mode string

const (
	ModeRandom   Mode = "maze"          // Uniform random pick from the level set
	ModeCampaign Mode = "maze_campaign" // Level set in ID order, wrapping
)

// Options are the collaborators a game is built with.
type Options struct {
	Config   config.MazeConfig
	Levels   *levels.Loader    // Nil opens Config.Levels.Dir
	Feedback maze.Feedback     // Nil plays nothing
	Logger   *log.Logger       // Nil discards
	Clock    maze.Clock        // Nil uses a monotonic clock
	Recorder func(maze.Result) // Called for every finished attempt
	Start    string            // Campaign level ID to start from
}

var (
	defaultsMu sync.RWMutex
	defaults   = Options{Config: config.DefaultMazeConfig()}
)

// Configure sets the options used by games created through the registry.
func Configure(opts Options) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	defaults = opts
}

// CurrentOptions returns the options set by Configure.
func CurrentOptions() Options {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()
	return defaults
}

func init() {
	registry.Register(registry.GameInfo{
		ID:          string(ModeRandom),
		Title:       "Tilt Maze",
		Description: "Random levels, endless",
	}, func() registry.Game {
		return New(ModeRandom, CurrentOptions())
	})
	registry.Register(registry.GameInfo{
		ID:          string(ModeCampaign),
		Title:       "Tilt Maze (Campaign)",
		Description: "Every level in order",
	}, func() registry.Game {
		return New(ModeCampaign, CurrentOptions())
	})
}

// Game implements registry.Game on top of a maze.Session.
type Game struct {
	mode Mode
	opts Options

	sim     *maze.Simulation // Outlives sessions; receives sensor readings
	session *maze.Session
	tilt    maze.Orientation // Keyboard tilt, radians
	err     error            // Last load failure, shown instead of the board

	paused  bool
	screenW int
	screenH int
}

// New creates a game. Levels are loaded on Reset.
func New(mode Mode, opts Options) *Game {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Game{
		mode: mode,
		opts: opts,
		sim:  maze.NewSimulation(opts.Config.Params(), opts.Clock),
	}
}

// ID returns the mode identifier.
func (g *Game) ID() string {
	return string(g.mode)
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeCampaign {
		return "Tilt Maze (Campaign)"
	}
	return "Tilt Maze"
}

// Reset builds a fresh session and loads the first level.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.paused = false
	g.tilt = maze.Orientation{}
	g.sim.SetOrientation(g.tilt)
	g.err = nil

	src, err := g.source(cfg.Seed)
	if err != nil {
		g.fail(err)
		return
	}

	g.session = maze.NewSession(src, g.sim,
		maze.WithFeedback(g.opts.Feedback),
		maze.WithLogger(g.opts.Logger),
		maze.WithRecorder(g.opts.Recorder),
	)

	if err := g.session.Load(); err != nil {
		g.fail(err)
	}
}

func (g *Game) source(seed int64) (maze.LevelSource, error) {
	loader := g.opts.Levels
	if loader == nil {
		loader = levels.Open(g.opts.Config.Levels.Dir)
	}

	specs, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}

	if g.mode == ModeCampaign {
		src, err := levels.NewSequentialSource(specs)
		if err != nil {
			return nil, err
		}
		if g.opts.Start != "" && !src.SkipTo(g.opts.Start) {
			g.opts.Logger.Warn("unknown start level", "id", g.opts.Start)
		}
		return src, nil
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return levels.NewSource(g.opts.Config.Levels.Order, specs, seed)
}

func (g *Game) fail(err error) {
	g.err = err
	g.opts.Logger.Error("maze unavailable", "mode", g.mode, "error", err)
}

// Step applies one frame of input and advances the session.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.session == nil {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && g.session.Status() == maze.StatusPlaying {
		g.paused = !g.paused
		if !g.paused {
			g.session.Resume()
		}
	}

	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.applyTilt(in)

	if in.Has(core.ActionTap) {
		if err := g.session.Tap(); err != nil {
			g.fail(err)
		} else {
			g.err = nil
		}
	}

	g.session.Update()

	return core.StepResult{State: g.State()}
}

// applyTilt turns tilt keys into orientation changes.
// Positive pitch rolls the ball left, positive roll rolls it up.
func (g *Game) applyTilt(in core.InputFrame) {
	step := g.opts.Config.Controls.TiltStep
	limit := g.opts.Config.Controls.MaxTilt

	changed := false
	adjust := func(axis int, delta float64) {
		g.tilt[axis] = core.ClampF(g.tilt[axis]+delta, -limit, limit)
		changed = true
	}

	if in.Has(core.ActionTiltLeft) {
		adjust(1, step)
	}
	if in.Has(core.ActionTiltRight) {
		adjust(1, -step)
	}
	if in.Has(core.ActionTiltUp) {
		adjust(2, step)
	}
	if in.Has(core.ActionTiltDown) {
		adjust(2, -step)
	}
	if in.Has(core.ActionLevel) {
		g.tilt = maze.Orientation{}
		changed = true
	}

	if changed {
		g.sim.SetOrientation(g.tilt)
	}
}

// SetOrientation forwards an external tilt reading, e.g. from a phone sensor.
// Safe to call from any goroutine.
func (g *Game) SetOrientation(o maze.Orientation) {
	g.sim.SetOrientation(o)
}

// Session returns the underlying session, or nil before Reset.
func (g *Game) Session() *maze.Session {
	return g.session
}

// Err returns the last level loading failure.
func (g *Game) Err() error {
	return g.err
}

// State returns the platform view of the session.
func (g *Game) State() core.GameState {
	st := core.GameState{Paused: g.paused}
	if g.session != nil {
		st.Score = g.session.Snapshot().Completed
	}
	return st
}
