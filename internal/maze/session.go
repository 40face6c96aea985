package maze

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Status is the level status of a session.
type Status int

const (
	StatusLoading       Status = iota // Waiting for a level
	StatusPlaying                     // Ball in play
	StatusLevelLost                   // Ball fell into a hole
	StatusLevelComplete               // Ball reached the goal
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusLevelLost:
		return "lost"
	case StatusLevelComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Pattern is a feedback cue: alternating on and off durations, starting with on.
type Pattern []time.Duration

// Feedback cues fired once when a level ends.
var (
	// CompletePattern is 3 x (500ms on, 200ms off).
	CompletePattern = Pattern{
		500 * time.Millisecond, 200 * time.Millisecond,
		500 * time.Millisecond, 200 * time.Millisecond,
		500 * time.Millisecond, 200 * time.Millisecond,
	}
	// LostPattern is 1000ms continuous.
	LostPattern = Pattern{1000 * time.Millisecond}
)

// Total returns the summed duration of the pattern.
func (p Pattern) Total() time.Duration {
	var d time.Duration
	for _, step := range p {
		d += step
	}
	return d
}

// Feedback plays end-of-level cues (vibration, sound).
type Feedback interface {
	Play(p Pattern)
	Cancel()
}

// LevelSource supplies raw levels when a new one is requested.
type LevelSource interface {
	Next() (LevelSpec, error)
}

// Result describes a finished attempt at a level.
type Result struct {
	LevelID   string
	LevelHash uint64
	Outcome   Outcome
	Duration  time.Duration
}

// Snapshot is the externally observable state of a session for one frame.
type Snapshot struct {
	Status    Status
	Position  Vec2
	Velocity  Vec2
	LevelID   string
	LevelName string
	Attempt   int           // Attempts at the current level, starting at 1
	Elapsed   time.Duration // Time since the current attempt started
	Completed int           // Levels completed in this session
}

type nopFeedback struct{}

func (nopFeedback) Play(Pattern) {}
func (nopFeedback) Cancel()      {}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFeedback sets the end-of-level feedback collaborator.
func WithFeedback(f Feedback) SessionOption {
	return func(s *Session) {
		if f != nil {
			s.feedback = f
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets a callback invoked for every finished attempt.
func WithRecorder(fn func(Result)) SessionOption {
	return func(s *Session) {
		s.record = fn
	}
}

// Session owns the level status state machine and the simulation driving it.
//
//	Loading -> Playing -> LevelLost     -> Playing (retry)
//	                   -> LevelComplete -> Loading (advance)
type Session struct {
	source   LevelSource
	sim      *Simulation
	clock    Clock
	feedback Feedback
	logger   *log.Logger
	record   func(Result)

	status       Status
	level        *Level
	attempt      int
	attemptStart int64
	attemptEnd   int64
	completed    int
}

// NewSession creates a session in the Loading state.
// The session and simulation must share the same clock.
func NewSession(source LevelSource, sim *Simulation, opts ...SessionOption) *Session {
	s := &Session{
		source:   source,
		sim:      sim,
		clock:    sim.clock,
		feedback: nopFeedback{},
		logger:   log.New(io.Discard),
		status:   StatusLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current level status.
func (s *Session) Status() Status {
	return s.status
}

// Level returns the current level, or nil while none has loaded.
func (s *Session) Level() *Level {
	return s.level
}

// Simulation returns the underlying simulation.
func (s *Session) Simulation() *Simulation {
	return s.sim
}

// SetOrientation forwards a tilt reading to the simulation.
func (s *Session) SetOrientation(o Orientation) {
	s.sim.SetOrientation(o)
}

// Load requests the next level and enters Playing.
// On failure the session stays in Loading and the error is returned.
func (s *Session) Load() error {
	s.feedback.Cancel()
	s.status = StatusLoading

	spec, err := s.source.Next()
	if err != nil {
		s.logger.Error("cannot read level", "error", err)
		return fmt.Errorf("maze: load level: %w", err)
	}

	level, err := NewLevel(spec)
	if err != nil {
		s.logger.Error("cannot build level", "id", spec.ID, "error", err)
		return err
	}

	s.level = level
	s.attempt = 0
	s.logger.Info("level loaded",
		"id", level.ID(),
		"walls", len(level.walls),
		"holes", len(level.holes)-1,
	)
	s.reset()
	return nil
}

// Update advances one frame while Playing and applies the outcome.
func (s *Session) Update() Outcome {
	if s.status != StatusPlaying {
		return Continue
	}

	outcome := s.sim.Tick()
	switch outcome {
	case HitHole:
		s.finish(StatusLevelLost, outcome, LostPattern)
	case HitGoal:
		s.completed++
		s.finish(StatusLevelComplete, outcome, CompletePattern)
	}
	return outcome
}

// Retry restarts the current level. Allowed while Playing or LevelLost.
func (s *Session) Retry() bool {
	if s.level == nil || (s.status != StatusPlaying && s.status != StatusLevelLost) {
		return false
	}
	s.feedback.Cancel()
	s.reset()
	return true
}

// Advance leaves a completed level and loads the next one.
func (s *Session) Advance() error {
	if s.status != StatusLevelComplete {
		return nil
	}
	return s.Load()
}

// Tap is the single advance-or-retry trigger.
func (s *Session) Tap() error {
	switch s.status {
	case StatusPlaying, StatusLevelLost:
		s.Retry()
		return nil
	case StatusLevelComplete:
		return s.Advance()
	default:
		return s.Load()
	}
}

// Resume discards the time spent outside Update, e.g. while paused.
// The discarded time does not count towards the attempt duration.
func (s *Session) Resume() {
	if s.status == StatusPlaying {
		if gap := s.clock() - s.sim.lastTick; gap > 0 {
			s.attemptStart += gap
		}
	}
	s.sim.Resync()
}

// Snapshot returns the observable state for renderers and feedback.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Status:    s.status,
		Attempt:   s.attempt,
		Completed: s.completed,
	}
	if s.level == nil {
		return snap
	}

	st := s.sim.State()
	snap.Position = st.Position
	snap.Velocity = st.Velocity
	snap.LevelID = s.level.ID()
	snap.LevelName = s.level.Name()

	end := s.attemptEnd
	if s.status == StatusPlaying {
		end = s.clock()
	}
	snap.Elapsed = time.Duration(end-s.attemptStart) * time.Millisecond
	return snap
}

// reset starts a new attempt at the current level.
func (s *Session) reset() {
	s.sim.Reset(s.level)
	s.attempt++
	s.attemptStart = s.clock()
	s.attemptEnd = s.attemptStart
	s.status = StatusPlaying
}

// finish ends the current attempt and fires the cue once.
func (s *Session) finish(status Status, outcome Outcome, cue Pattern) {
	s.status = status
	s.attemptEnd = s.clock()
	s.feedback.Play(cue)

	duration := time.Duration(s.attemptEnd-s.attemptStart) * time.Millisecond
	s.logger.Info("level finished",
		"id", s.level.ID(),
		"outcome", outcome,
		"attempt", s.attempt,
		"duration", duration,
	)

	if s.record != nil {
		s.record(Result{
			LevelID:   s.level.ID(),
			LevelHash: s.level.Hash(),
			Outcome:   outcome,
			Duration:  duration,
		})
	}
}
