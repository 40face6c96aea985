package maze

import (
	"errors"
	"testing"
	"time"
)

type funcSource func() (LevelSpec, error)

func (f funcSource) Next() (LevelSpec, error) {
	return f()
}

// queueSource hands out specs in order and repeats the last one.
type queueSource struct {
	specs []LevelSpec
	calls int
}

func (q *queueSource) Next() (LevelSpec, error) {
	i := q.calls
	if i >= len(q.specs) {
		i = len(q.specs) - 1
	}
	q.calls++
	return q.specs[i], nil
}

type recordingFeedback struct {
	played   []Pattern
	canceled int
}

func (f *recordingFeedback) Play(p Pattern) { f.played = append(f.played, p) }
func (f *recordingFeedback) Cancel()        { f.canceled++ }

// holeSpec starts the ball inside a hole.
func holeSpec() LevelSpec {
	spec := basicSpec()
	spec.ID = "trap"
	spec.Holes = []HoleSpec{{X: 200, Y: 200}}
	return spec
}

// goalSpec starts the ball inside the goal.
func goalSpec(id string) LevelSpec {
	spec := basicSpec()
	spec.ID = id
	spec.Goal = &HoleSpec{X: 200, Y: 200}
	return spec
}

func newTestSession(source LevelSource, opts ...SessionOption) (*Session, *fakeClock, *recordingFeedback) {
	clock := &fakeClock{now: 500}
	fb := &recordingFeedback{}
	sim := NewSimulation(DefaultParams(), clock.Now)
	opts = append([]SessionOption{WithFeedback(fb)}, opts...)
	return NewSession(source, sim, opts...), clock, fb
}

func TestSessionStartsLoading(t *testing.T) {
	s, _, _ := newTestSession(&queueSource{specs: []LevelSpec{basicSpec()}})

	if s.Status() != StatusLoading {
		t.Errorf("Status() = %v, expected loading", s.Status())
	}
	if s.Level() != nil {
		t.Error("Level() should be nil before Load")
	}
	if out := s.Update(); out != Continue {
		t.Errorf("Update() while loading = %v, expected continue", out)
	}
	if snap := s.Snapshot(); snap.LevelID != "" || snap.Attempt != 0 {
		t.Errorf("unexpected snapshot before load: %+v", snap)
	}
}

func TestSessionLoadEntersPlaying(t *testing.T) {
	s, _, fb := newTestSession(&queueSource{specs: []LevelSpec{basicSpec()}})

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Status() != StatusPlaying {
		t.Errorf("Status() = %v, expected playing", s.Status())
	}
	if fb.canceled != 1 {
		t.Errorf("Load() should cancel pending feedback, canceled = %d", fb.canceled)
	}

	snap := s.Snapshot()
	if snap.LevelID != "basic" || snap.Attempt != 1 {
		t.Errorf("Snapshot() = %+v, expected level basic attempt 1", snap)
	}
	if snap.Position != s.Level().Start() {
		t.Errorf("ball should start at %+v, got %+v", s.Level().Start(), snap.Position)
	}
}

func TestSessionLoadSourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	s, _, _ := newTestSession(funcSource(func() (LevelSpec, error) {
		return LevelSpec{}, boom
	}))

	err := s.Load()
	if !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v, expected to wrap %v", err, boom)
	}
	if s.Status() != StatusLoading {
		t.Errorf("Status() = %v, expected loading after failure", s.Status())
	}
}

func TestSessionLoadInvalidLevel(t *testing.T) {
	bad := basicSpec()
	bad.Start = nil
	s, _, _ := newTestSession(&queueSource{specs: []LevelSpec{bad}})

	err := s.Load()
	if !errors.Is(err, ErrLevelFormat) {
		t.Fatalf("Load() error = %v, expected a level format error", err)
	}
	if s.Status() != StatusLoading {
		t.Errorf("Status() = %v, expected loading after failure", s.Status())
	}
}

func TestSessionHoleLosesLevel(t *testing.T) {
	s, clock, fb := newTestSession(&queueSource{specs: []LevelSpec{holeSpec()}})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.now += 16
	if out := s.Update(); out != HitHole {
		t.Fatalf("Update() = %v, expected hole", out)
	}
	if s.Status() != StatusLevelLost {
		t.Errorf("Status() = %v, expected lost", s.Status())
	}

	// Frozen: further updates do nothing and the cue is not repeated
	clock.now += 16
	s.Update()
	s.Update()
	if len(fb.played) != 1 {
		t.Fatalf("cue played %d times, expected once", len(fb.played))
	}
	if fb.played[0].Total() != time.Second {
		t.Errorf("lost cue = %v, expected 1s", fb.played[0])
	}
}

func TestSessionGoalCompletesLevel(t *testing.T) {
	s, clock, fb := newTestSession(&queueSource{specs: []LevelSpec{goalSpec("one")}})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.now += 16
	if out := s.Update(); out != HitGoal {
		t.Fatalf("Update() = %v, expected goal", out)
	}
	if s.Status() != StatusLevelComplete {
		t.Errorf("Status() = %v, expected complete", s.Status())
	}
	if len(fb.played) != 1 || len(fb.played[0]) != len(CompletePattern) {
		t.Errorf("expected the complete cue once, got %v", fb.played)
	}
	if s.Snapshot().Completed != 1 {
		t.Errorf("Completed = %d, expected 1", s.Snapshot().Completed)
	}
}

func TestSessionRetry(t *testing.T) {
	s, clock, fb := newTestSession(&queueSource{specs: []LevelSpec{holeSpec()}})
	if s.Retry() {
		t.Error("Retry() should be refused before a level is loaded")
	}

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clock.now += 16
	s.Update()

	canceled := fb.canceled
	if !s.Retry() {
		t.Fatal("Retry() should be allowed after losing")
	}
	if s.Status() != StatusPlaying {
		t.Errorf("Status() = %v, expected playing", s.Status())
	}
	if fb.canceled != canceled+1 {
		t.Error("Retry() should cancel the running cue")
	}
	if s.Snapshot().Attempt != 2 {
		t.Errorf("Attempt = %d, expected 2", s.Snapshot().Attempt)
	}
	if s.Snapshot().Position != s.Level().Start() {
		t.Error("Retry() should put the ball back at the start")
	}
}

func TestSessionRetryRefusedWhenComplete(t *testing.T) {
	s, clock, _ := newTestSession(&queueSource{specs: []LevelSpec{goalSpec("one")}})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clock.now += 16
	s.Update()

	if s.Retry() {
		t.Error("Retry() should be refused on a completed level")
	}
	if s.Status() != StatusLevelComplete {
		t.Errorf("Status() = %v, expected complete", s.Status())
	}
}

func TestSessionAdvance(t *testing.T) {
	src := &queueSource{specs: []LevelSpec{goalSpec("one"), basicSpec()}}
	s, clock, _ := newTestSession(src)

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Advance(); err != nil || src.calls != 1 {
		t.Fatalf("Advance() while playing should be a no-op, err = %v calls = %d", err, src.calls)
	}

	clock.now += 16
	s.Update()

	if err := s.Advance(); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if s.Status() != StatusPlaying {
		t.Errorf("Status() = %v, expected playing", s.Status())
	}
	if s.Level().ID() != "basic" {
		t.Errorf("Level().ID() = %q, expected basic", s.Level().ID())
	}
	if s.Snapshot().Attempt != 1 {
		t.Errorf("Attempt should restart at 1 on a new level, got %d", s.Snapshot().Attempt)
	}
}

func TestSessionTap(t *testing.T) {
	src := &queueSource{specs: []LevelSpec{holeSpec(), goalSpec("two"), basicSpec()}}
	s, clock, _ := newTestSession(src)

	// Loading: tap loads
	if err := s.Tap(); err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	if s.Level().ID() != "trap" {
		t.Fatalf("Level().ID() = %q, expected trap", s.Level().ID())
	}

	// Playing: tap restarts the same level
	if err := s.Tap(); err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	if s.Level().ID() != "trap" || s.Snapshot().Attempt != 2 {
		t.Errorf("tap while playing should retry, got %+v", s.Snapshot())
	}

	// Lost: tap retries
	clock.now += 16
	s.Update()
	if err := s.Tap(); err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	if s.Status() != StatusPlaying || s.Snapshot().Attempt != 3 {
		t.Errorf("tap after losing should retry, got %+v", s.Snapshot())
	}
	if src.calls != 1 {
		t.Errorf("retries should not request levels, calls = %d", src.calls)
	}
}

func TestSessionTapAdvancesCompletedLevel(t *testing.T) {
	src := &queueSource{specs: []LevelSpec{goalSpec("one"), basicSpec()}}
	s, clock, _ := newTestSession(src)

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clock.now += 16
	s.Update()

	if err := s.Tap(); err != nil {
		t.Fatalf("Tap() error = %v", err)
	}
	if s.Level().ID() != "basic" {
		t.Errorf("Level().ID() = %q, expected basic", s.Level().ID())
	}
}

func TestSessionRecorder(t *testing.T) {
	var results []Result
	src := &queueSource{specs: []LevelSpec{goalSpec("one")}}
	s, clock, _ := newTestSession(src, WithRecorder(func(r Result) {
		results = append(results, r)
	}))

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clock.now += 250
	s.Update()

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.LevelID != "one" || r.Outcome != HitGoal {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Duration != 250*time.Millisecond {
		t.Errorf("Duration = %v, expected 250ms", r.Duration)
	}
}

func TestSessionSnapshotElapsed(t *testing.T) {
	s, clock, _ := newTestSession(&queueSource{specs: []LevelSpec{holeSpec()}})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.now += 40
	if got := s.Snapshot().Elapsed; got != 40*time.Millisecond {
		t.Errorf("Elapsed while playing = %v, expected 40ms", got)
	}

	s.Update()
	clock.now += 1000
	if got := s.Snapshot().Elapsed; got != 40*time.Millisecond {
		t.Errorf("Elapsed after losing = %v, expected frozen at 40ms", got)
	}
}

func TestSessionResumeExcludesPausedTime(t *testing.T) {
	s, clock, _ := newTestSession(&queueSource{specs: []LevelSpec{basicSpec()}})
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	clock.now += 100
	s.Update()

	// Paused: no updates for 5s
	clock.now += 5000
	s.Resume()

	if got := s.Snapshot().Elapsed; got != 100*time.Millisecond {
		t.Errorf("Elapsed after resume = %v, expected 100ms", got)
	}

	clock.now += 20
	s.Update()
	if got := s.Simulation().Elapsed(); got != 20 {
		t.Errorf("step after resume = %d ms, expected 20", got)
	}
	if got := s.Snapshot().Elapsed; got != 120*time.Millisecond {
		t.Errorf("Elapsed = %v, expected 120ms", got)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusLoading:       "loading",
		StatusPlaying:       "playing",
		StatusLevelLost:     "lost",
		StatusLevelComplete: "complete",
		Status(-1):          "unknown",
	}
	for st, expected := range tests {
		if st.String() != expected {
			t.Errorf("Status(%d).String() = %q, expected %q", int(st), st.String(), expected)
		}
	}
}

func TestPatternTotal(t *testing.T) {
	if got := CompletePattern.Total(); got != 2100*time.Millisecond {
		t.Errorf("CompletePattern.Total() = %v, expected 2.1s", got)
	}
	if got := LostPattern.Total(); got != time.Second {
		t.Errorf("LostPattern.Total() = %v, expected 1s", got)
	}
}
