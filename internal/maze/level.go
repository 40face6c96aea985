package maze

import (
	"fmt"
	"math"
)

// Raw-unit constants of the level format.
const (
	// BallRadius is the ball radius before normalization.
	BallRadius = 5.0
	// DefaultHoleRadius is used when a hole or goal omits its radius.
	DefaultHoleRadius = 7.0
	// SpeedConstant scales tilt into acceleration per raw board unit.
	SpeedConstant = 1.25e-9
	// SpeedReference is the board size at which tilt has no effect.
	// Smaller boards get proportionally stronger acceleration.
	SpeedReference = 4196.0
)

// Ball holds the per-level ball properties. Both are fixed at level load.
type Ball struct {
	Radius float64 // Normalized radius
	Speed  float64 // Multiplier applied to tilt-derived acceleration
}

// NewBall derives the ball for a board of the given raw size.
func NewBall(size float64) Ball {
	return Ball{
		Radius: NormalizeLength(BallRadius, size),
		Speed:  SpeedConstant * (SpeedReference - size),
	}
}

// Point is a raw board coordinate.
type Point struct {
	X, Y float64
}

// WallSpec is a raw wall rectangle.
type WallSpec struct {
	X1, X2 float64 // Left, right
	Y1, Y2 float64 // Top, bottom
}

// HoleSpec is a raw hole. A nil Radius means DefaultHoleRadius.
type HoleSpec struct {
	X, Y   float64
	Radius *float64
}

// LevelSpec is the raw level description produced by a level file parser.
// Size, Start and Goal are required.
type LevelSpec struct {
	ID    string
	Name  string
	Hash  uint64 // Content fingerprint, set by the loader
	Size  float64
	Start *Point
	Walls []WallSpec
	Holes []HoleSpec
	Goal  *HoleSpec
}

// Level is an immutable, normalized maze ready for simulation.
type Level struct {
	id    string
	name  string
	hash  uint64
	size  float64
	ball  Ball
	start Vec2
	walls []Wall
	holes []Hole
}

// NewLevel validates spec and builds a normalized Level.
// Every failure is a *LevelFormatError.
func NewLevel(spec LevelSpec) (*Level, error) {
	id := spec.ID

	if spec.Size == 0 {
		return nil, &LevelFormatError{Level: id, Field: "size", Err: fmt.Errorf("missing board size")}
	}
	if !(spec.Size > 0) || math.IsInf(spec.Size, 0) {
		return nil, formatErr(id, "size", "board size must be positive and finite, got %g", spec.Size)
	}
	if spec.Start == nil {
		return nil, &LevelFormatError{Level: id, Field: "start", Err: fmt.Errorf("missing start position")}
	}
	if spec.Goal == nil {
		return nil, &LevelFormatError{Level: id, Field: "goal", Err: fmt.Errorf("missing goal")}
	}
	if err := checkFinite(id, "start", spec.Start.X, spec.Start.Y); err != nil {
		return nil, err
	}
	for i, w := range spec.Walls {
		if err := checkFinite(id, fmt.Sprintf("w[%d]", i), w.X1, w.X2, w.Y1, w.Y2); err != nil {
			return nil, err
		}
	}
	for i, h := range spec.Holes {
		if err := checkFinite(id, fmt.Sprintf("h[%d]", i), h.X, h.Y); err != nil {
			return nil, err
		}
	}
	if err := checkFinite(id, "goal", spec.Goal.X, spec.Goal.Y); err != nil {
		return nil, err
	}

	size := spec.Size
	level := &Level{
		id:    id,
		name:  spec.Name,
		hash:  spec.Hash,
		size:  size,
		ball:  NewBall(size),
		start: V(Normalize(spec.Start.X, size), Normalize(spec.Start.Y, size)),
		walls: make([]Wall, 0, len(spec.Walls)),
		holes: make([]Hole, 0, len(spec.Holes)+1),
	}
	if level.name == "" {
		level.name = id
	}

	for _, w := range spec.Walls {
		level.walls = append(level.walls, NewWall(size, w.X1, w.X2, w.Y1, w.Y2))
	}

	for i, h := range spec.Holes {
		hole, err := buildHole(size, h, false)
		if err != nil {
			return nil, formatErr(id, fmt.Sprintf("h[%d].radius", i), "%v", err)
		}
		level.holes = append(level.holes, hole)
	}

	// The goal always goes last.
	goal, err := buildHole(size, *spec.Goal, true)
	if err != nil {
		return nil, formatErr(id, "goal.radius", "%v", err)
	}
	level.holes = append(level.holes, goal)

	return level, nil
}

func buildHole(size float64, h HoleSpec, goal bool) (Hole, error) {
	radius := DefaultHoleRadius
	if h.Radius != nil {
		radius = *h.Radius
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Hole{}, fmt.Errorf("radius must be positive and finite, got %g", radius)
	}
	return NewHole(size, h.X, h.Y, radius, goal), nil
}

// checkFinite rejects NaN and infinite coordinates.
func checkFinite(level, field string, vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return formatErr(level, field, "coordinate must be finite, got %g", v)
		}
	}
	return nil
}

// ID returns the level identifier.
func (l *Level) ID() string { return l.id }

// Name returns the display name.
func (l *Level) Name() string { return l.name }

// Hash returns the content fingerprint assigned by the loader.
func (l *Level) Hash() uint64 { return l.hash }

// Size returns the raw board size.
func (l *Level) Size() float64 { return l.size }

// Ball returns the ball properties.
func (l *Level) Ball() Ball { return l.ball }

// Start returns the normalized start position.
func (l *Level) Start() Vec2 { return l.start }

// Walls returns a copy of the walls.
func (l *Level) Walls() []Wall {
	out := make([]Wall, len(l.walls))
	copy(out, l.walls)
	return out
}

// Holes returns a copy of the holes in insertion order, goal last.
func (l *Level) Holes() []Hole {
	out := make([]Hole, len(l.holes))
	copy(out, l.holes)
	return out
}

// Goal returns the goal hole.
func (l *Level) Goal() Hole {
	return l.holes[len(l.holes)-1]
}
