package maze

import (
	"math"
	"sync/atomic"
	"time"
)

// DefaultTiltThreshold is the tilt, in radians, under which a reading is ignored.
const DefaultTiltThreshold = 0.01

// Orientation is a tilt reading in radians: azimuth, pitch, roll.
// Only pitch (index 1) and roll (index 2) drive the ball.
type Orientation [3]float64

// Params tunes the simulation.
type Params struct {
	BounceReduction float64
	TiltThreshold   float64
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		BounceReduction: DefaultBounceReduction,
		TiltThreshold:   DefaultTiltThreshold,
	}
}

// Clock returns the current time in whole milliseconds from a monotonic source.
type Clock func() int64

// MonotonicClock returns a Clock counting milliseconds since its creation.
func MonotonicClock() Clock {
	origin := time.Now()
	return func() int64 {
		return time.Since(origin).Milliseconds()
	}
}

// Simulation integrates the ball over one level.
// Step and Tick must be called from a single goroutine; SetOrientation may be
// called from any goroutine and the last written reading wins.
type Simulation struct {
	params   Params
	resolver Resolver
	clock    Clock

	level *Level
	state State

	orientation atomic.Pointer[Orientation]

	lastTick int64 // Timestamp of the previous tick (ms)
	elapsed  int64 // Milliseconds between the last two ticks
}

// NewSimulation creates a simulation. A nil clock uses MonotonicClock.
func NewSimulation(params Params, clock Clock) *Simulation {
	if clock == nil {
		clock = MonotonicClock()
	}
	s := &Simulation{
		params:   params,
		resolver: NewResolver(params.BounceReduction),
		clock:    clock,
	}
	s.orientation.Store(&Orientation{})
	return s
}

// Reset places the ball at the level start at rest and stamps the clock.
func (s *Simulation) Reset(level *Level) {
	s.level = level
	s.state = State{Position: level.Start()}
	s.lastTick = s.clock()
	s.elapsed = 0
}

// Resync restamps the clock so the next tick does not include time spent paused.
func (s *Simulation) Resync() {
	s.lastTick = s.clock()
}

// Level returns the level being simulated, or nil before the first Reset.
func (s *Simulation) Level() *Level {
	return s.level
}

// SetOrientation publishes the latest tilt reading.
func (s *Simulation) SetOrientation(o Orientation) {
	s.orientation.Store(&o)
}

// Orientation returns the most recent tilt reading.
func (s *Simulation) Orientation() Orientation {
	return *s.orientation.Load()
}

// Tick measures the time since the previous tick and advances by it.
func (s *Simulation) Tick() Outcome {
	now := s.clock()
	elapsed := now - s.lastTick
	s.lastTick = now
	return s.Step(elapsed)
}

// Step advances the simulation by elapsed milliseconds and resolves collisions.
// Negative durations are treated as zero. Without a level it does nothing.
func (s *Simulation) Step(elapsed int64) Outcome {
	if s.level == nil {
		return Continue
	}
	if elapsed < 0 {
		elapsed = 0
	}
	s.elapsed = elapsed

	s.computeAcceleration()

	dt := float64(elapsed)
	st := &s.state

	st.Velocity = st.Velocity.Add(st.Acceleration.Scale(dt))

	// Updated velocity plus the acceleration term.
	st.Position = st.Position.
		Add(st.Velocity.Scale(dt)).
		Add(st.Acceleration.Scale(0.5 * dt * dt))

	return s.resolver.Resolve(st, s.level)
}

// computeAcceleration converts the current tilt into acceleration.
func (s *Simulation) computeAcceleration() {
	o := s.Orientation()
	speed := s.level.ball.Speed
	s.state.Acceleration = V(
		tiltAcceleration(o[1], s.params.TiltThreshold, speed),
		tiltAcceleration(o[2], s.params.TiltThreshold, speed),
	)
}

func tiltAcceleration(angle, threshold, speed float64) float64 {
	if math.Abs(angle) <= threshold {
		return 0
	}
	return -math.Sin(angle) * math.Cos(angle) * speed
}

// State returns a copy of the kinematic state.
func (s *Simulation) State() State {
	return s.state
}

// Position returns the ball position.
func (s *Simulation) Position() Vec2 {
	return s.state.Position
}

// Velocity returns the ball velocity.
func (s *Simulation) Velocity() Vec2 {
	return s.state.Velocity
}

// Acceleration returns the acceleration applied in the last step.
func (s *Simulation) Acceleration() Vec2 {
	return s.state.Acceleration
}

// Elapsed returns the duration of the last step in milliseconds.
func (s *Simulation) Elapsed() int64 {
	return s.elapsed
}
