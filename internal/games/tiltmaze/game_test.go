package tiltmaze

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"unicode/utf8"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/core"
	"github.com/zavo/tiltmaze/internal/maze"
	"github.com/zavo/tiltmaze/internal/maze/levels"
	"github.com/zavo/tiltmaze/internal/registry"
)

const frameMs = 20

var testLevels = fstest.MapFS{
	"a-drop.yaml": {Data: []byte(`name: Drop
size: 400
start: {x: 100, y: 200}
holes:
  - {x: 60, y: 200}
goal: {x: 340, y: 200, radius: 10}
`)},
	"b-open.yaml": {Data: []byte(`name: Open
size: 400
start: {x: 100, y: 200}
goal: {x: 340, y: 200, radius: 10}
`)},
	"c-corner.toml": {Data: []byte(`name = "Corner"
size = 400
start = { x = 200, y = 200 }
goal = { x = 20, y = 20 }
`)},
}

type testClock struct{ now int64 }

func (c *testClock) Now() int64 { return c.now }

type harness struct {
	game    *Game
	clock   *testClock
	results []maze.Result
}

func newHarness(t *testing.T, mode Mode, edit func(*Options)) *harness {
	t.Helper()

	h := &harness{clock: &testClock{now: 1000}}

	cfg := config.DefaultMazeConfig()
	cfg.Controls.TiltStep = 0.5
	cfg.Controls.MaxTilt = 0.5

	opts := Options{
		Config:   cfg,
		Levels:   levels.NewFSLoader(testLevels, "test"),
		Clock:    h.clock.Now,
		Recorder: func(r maze.Result) { h.results = append(h.results, r) },
	}
	if edit != nil {
		edit(&opts)
	}

	h.game = New(mode, opts)
	h.game.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, Seed: 7})
	return h
}

// step advances the clock by one frame and applies the given actions.
func (h *harness) step(actions ...core.Action) core.StepResult {
	h.clock.now += frameMs
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return h.game.Step(in)
}

// runUntilDone steps until the attempt ends or the frame budget runs out.
func (h *harness) runUntilDone(t *testing.T, frames int) maze.Status {
	t.Helper()
	for i := 0; i < frames; i++ {
		h.step()
		if st := h.game.Session().Status(); st != maze.StatusPlaying {
			return st
		}
	}
	t.Fatalf("attempt still running after %d frames", frames)
	return maze.StatusPlaying
}

func TestModesRegistered(t *testing.T) {
	for _, id := range []string{"maze", "maze_campaign"} {
		if !registry.Exists(id) {
			t.Fatalf("%s should be registered", id)
		}
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
		if g.ID() != id {
			t.Errorf("ID() = %q, expected %q", g.ID(), id)
		}
	}
}

func TestCampaignStartsAtFirstLevel(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)

	if err := h.game.Err(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if id := h.game.Session().Level().ID(); id != "a-drop" {
		t.Errorf("first level = %q, expected a-drop", id)
	}
}

func TestCampaignStartLevel(t *testing.T) {
	h := newHarness(t, ModeCampaign, func(o *Options) { o.Start = "b-open" })

	if id := h.game.Session().Level().ID(); id != "b-open" {
		t.Errorf("first level = %q, expected b-open", id)
	}
}

func TestRollIntoHoleThenRetry(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)

	h.step(core.ActionTiltLeft)
	if st := h.runUntilDone(t, 200); st != maze.StatusLevelLost {
		t.Fatalf("status = %v, expected lost", st)
	}

	if len(h.results) != 1 || h.results[0].Outcome != maze.HitHole {
		t.Fatalf("results = %+v, expected one hole", h.results)
	}
	if h.results[0].LevelID != "a-drop" {
		t.Errorf("LevelID = %q", h.results[0].LevelID)
	}

	h.step(core.ActionLevel, core.ActionTap)

	snap := h.game.Snapshot()
	if snap.Status != maze.StatusPlaying || snap.Attempt != 2 {
		t.Errorf("after tap: status %v attempt %d, expected playing attempt 2", snap.Status, snap.Attempt)
	}
	if snap.Position.X > -0.49 || snap.Position.X < -0.51 {
		t.Errorf("ball should restart near the start, got %+v", snap.Position)
	}
}

func TestRollIntoGoalThenAdvance(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)

	h.step(core.ActionTiltRight)
	if st := h.runUntilDone(t, 500); st != maze.StatusLevelComplete {
		t.Fatalf("status = %v, expected complete", st)
	}
	if got := h.game.State().Score; got != 1 {
		t.Errorf("Score = %d, expected 1", got)
	}
	if h.results[len(h.results)-1].Outcome != maze.HitGoal {
		t.Errorf("last result = %+v, expected goal", h.results[len(h.results)-1])
	}

	// Frames after the end do not move anything
	before := h.game.Snapshot()
	h.step()
	if after := h.game.Snapshot(); after != before {
		t.Errorf("state changed after completion: %+v -> %+v", before, after)
	}

	h.step(core.ActionTap)
	if id := h.game.Session().Level().ID(); id != "b-open" {
		t.Errorf("next level = %q, expected b-open", id)
	}
	if st := h.game.Session().Status(); st != maze.StatusPlaying {
		t.Errorf("status = %v, expected playing", st)
	}
}

func TestTiltClampAndLevel(t *testing.T) {
	h := newHarness(t, ModeRandom, func(o *Options) {
		o.Config.Controls.TiltStep = 0.05
		o.Config.Controls.MaxTilt = 0.1
	})

	for i := 0; i < 5; i++ {
		h.step(core.ActionTiltLeft, core.ActionTiltDown)
	}

	tilt := h.game.Snapshot().Tilt
	if tilt[1] < 0.1-1e-12 || tilt[1] > 0.1+1e-12 {
		t.Errorf("pitch = %v, expected clamp at 0.1", tilt[1])
	}
	if tilt[2] > -0.1+1e-12 || tilt[2] < -0.1-1e-12 {
		t.Errorf("roll = %v, expected clamp at -0.1", tilt[2])
	}

	h.step(core.ActionLevel)
	if tilt := h.game.Snapshot().Tilt; tilt != (maze.Orientation{}) {
		t.Errorf("tilt after leveling = %v, expected zero", tilt)
	}
}

func TestPauseDiscardsTime(t *testing.T) {
	h := newHarness(t, ModeCampaign, func(o *Options) { o.Start = "b-open" })

	h.step(core.ActionTiltRight)
	h.step()

	res := h.step(core.ActionPause)
	if !res.State.Paused {
		t.Fatal("game should be paused")
	}
	frozen := h.game.Snapshot().Position

	h.clock.now += 5000
	h.step(core.ActionTiltLeft)
	if got := h.game.Snapshot().Position; got != frozen {
		t.Errorf("ball moved while paused: %+v -> %+v", frozen, got)
	}

	h.step(core.ActionPause)
	if h.game.State().Paused {
		t.Fatal("game should resume")
	}
	h.step()

	if got := h.game.Session().Simulation().Elapsed(); got != frameMs {
		t.Errorf("elapsed after resume = %d ms, expected %d", got, frameMs)
	}
}

func TestExternalOrientation(t *testing.T) {
	h := newHarness(t, ModeCampaign, func(o *Options) { o.Start = "b-open" })

	h.game.SetOrientation(maze.Orientation{0, -0.4, 0})
	for i := 0; i < 10; i++ {
		h.step()
	}

	snap := h.game.Snapshot()
	if snap.Velocity.X <= 0 {
		t.Errorf("negative pitch should roll the ball right, velocity %+v", snap.Velocity)
	}
	if snap.Velocity.Y != 0 {
		t.Errorf("zero roll should not move the ball vertically, velocity %+v", snap.Velocity)
	}
}

func TestNoLevels(t *testing.T) {
	h := newHarness(t, ModeRandom, func(o *Options) {
		o.Levels = levels.NewFSLoader(fstest.MapFS{}, "empty")
	})

	if !errors.Is(h.game.Err(), levels.ErrNoLevels) {
		t.Fatalf("Err() = %v, expected ErrNoLevels", h.game.Err())
	}

	// Must not panic
	h.step(core.ActionTap, core.ActionTiltLeft)

	scr := core.NewScreen(80, 24)
	h.game.Render(scr)
	if !strings.Contains(scr.String(), "No level available") {
		t.Error("render should explain that no level is available")
	}
}

func TestRenderErrorKeepsRunesWhole(t *testing.T) {
	h := newHarness(t, ModeRandom, func(o *Options) {
		o.Levels = levels.NewFSLoader(fstest.MapFS{}, "xéééééééééééé")
	})

	// 38 columns for the message cuts into the middle of an é byte-wise
	scr := core.NewScreen(40, 24)
	h.game.Render(scr)
	out := scr.String()

	if strings.ContainsRune(out, utf8.RuneError) {
		t.Errorf("error line contains a broken rune:\n%s", out)
	}
	if !strings.Contains(out, "levels: no playable levels in xééé") {
		t.Errorf("error line missing:\n%s", out)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		s        string
		limit    int
		expected string
	}{
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"trimmed", 4, "trim"},
		{"ééé", 2, "éé"},
		{"●◎●◎", 3, "●◎●"},
		{"any", 0, "any"},
	}

	for _, tc := range tests {
		if got := clip(tc.s, tc.limit); got != tc.expected {
			t.Errorf("clip(%q, %d) = %q, expected %q", tc.s, tc.limit, got, tc.expected)
		}
	}
}

func TestRender(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)

	scr := core.NewScreen(80, 24)
	h.game.Render(scr)
	out := scr.String()

	for _, want := range []string{"Drop", "attempt 1", string(glyphBall), string(glyphGoal), string(glyphHole), "┌"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}

	h.step(core.ActionTiltLeft)
	h.runUntilDone(t, 200)

	scr.Clear()
	h.game.Render(scr)
	if !strings.Contains(scr.String(), "LEVEL LOST") {
		t.Error("render should show the lost overlay")
	}
}

func TestRenderWalls(t *testing.T) {
	fsys := fstest.MapFS{
		"wall.yaml": {Data: []byte(`size: 400
start: {x: 20, y: 20}
walls:
  - {x1: 100, x2: 300, y1: 190, y2: 210}
goal: {x: 380, y: 380}
`)},
	}
	h := newHarness(t, ModeCampaign, func(o *Options) { o.Levels = levels.NewFSLoader(fsys, "test") })

	scr := core.NewScreen(80, 24)
	h.game.Render(scr)

	if !strings.Contains(scr.String(), strings.Repeat(string(glyphWall), 10)) {
		t.Errorf("expected a horizontal wall run in:\n%s", scr.String())
	}
}

func TestRenderTooSmall(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)

	scr := core.NewScreen(30, 8)
	h.game.Render(scr)
	if !strings.Contains(scr.String(), "Terminal too small") {
		t.Error("expected the too small message")
	}
}

func TestDeterminism(t *testing.T) {
	inputs := map[int][]core.Action{
		0:  {core.ActionTiltRight},
		15: {core.ActionTiltUp},
		40: {core.ActionLevel},
		41: {core.ActionTiltDown, core.ActionTiltLeft},
	}

	run := func() uint64 {
		h := newHarness(t, ModeRandom, nil)
		for i := 0; i < 120; i++ {
			h.step(inputs[i]...)
			if h.game.Session().Status() != maze.StatusPlaying {
				h.step(core.ActionTap)
			}
		}
		return h.game.Snapshot().Hash()
	}

	if a, b := run(), run(); a != b {
		t.Errorf("hash mismatch: %x vs %x", a, b)
	}
}

func TestSnapshotHashChanges(t *testing.T) {
	h := newHarness(t, ModeCampaign, nil)
	before := h.game.Snapshot().Hash()

	h.step(core.ActionTiltRight)
	h.step()

	if h.game.Snapshot().Hash() == before {
		t.Error("hash should change when the ball moves")
	}
}
