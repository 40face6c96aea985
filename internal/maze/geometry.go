// Package maze implements the tilt maze physics: level geometry, ball
// integration from orientation input, collision resolution against borders,
// walls and holes, and the level-status state machine.
// It has no terminal or I/O dependencies so it can be driven by any front end.
package maze

import "math"

// Vec2 is a 2D vector used for positions, velocities and geometric offsets.
type Vec2 struct {
	X, Y float64
}

// V constructs a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Abs returns the per-component absolute value.
func (v Vec2) Abs() Vec2 {
	return Vec2{X: math.Abs(v.X), Y: math.Abs(v.Y)}
}

// Normalize maps a raw board coordinate into the [-1, 1] board space.
// Board size is mapped to a span of 2, so everything is multiplied by 2.
func Normalize(raw, size float64) float64 {
	return (raw*2)/size - 1
}

// NormalizeLength maps a raw length (radius, half-extent) into board space.
func NormalizeLength(raw, size float64) float64 {
	return (raw * 2) / size
}

// Wall is an axis-aligned rectangle in board space.
type Wall struct {
	Center   Vec2
	HalfSize Vec2
}

// NewWall builds a wall from its raw left, right, top and bottom coordinates.
// The center and half-size are derived from the normalized corners.
func NewWall(size, left, right, top, bottom float64) Wall {
	l, r := Normalize(left, size), Normalize(right, size)
	t, b := Normalize(top, size), Normalize(bottom, size)
	if r < l {
		l, r = r, l
	}
	if b < t {
		t, b = b, t
	}

	half := V((r-l)/2, (b-t)/2)
	return Wall{
		Center:   V(l+half.X, t+half.Y),
		HalfSize: half,
	}
}

// Bounds returns the top-left and bottom-right corners of the wall.
func (w Wall) Bounds() (min, max Vec2) {
	return w.Center.Sub(w.HalfSize), w.Center.Add(w.HalfSize)
}

// Hole is a circular hole in board space. The goal is a hole too.
type Hole struct {
	Center Vec2
	Radius float64
	Goal   bool
}

// NewHole builds a hole from raw board coordinates.
func NewHole(size, x, y, radius float64, goal bool) Hole {
	return Hole{
		Center: V(Normalize(x, size), Normalize(y, size)),
		Radius: NormalizeLength(radius, size),
		Goal:   goal,
	}
}

// Contains reports whether p falls inside the hole.
// The test is an axis-aligned square of half-side Radius, not a distance check.
func (h Hole) Contains(p Vec2) bool {
	return math.Abs(p.X-h.Center.X) < h.Radius && math.Abs(p.Y-h.Center.Y) < h.Radius
}

// CircleVertices is the number of vertices in the unit circle table.
const CircleVertices = 45

// unitCircle holds cos/sin pairs every 8 degrees.
var unitCircle = func() [CircleVertices]Vec2 {
	var vs [CircleVertices]Vec2
	for i := range vs {
		rad := float64(i*8) * math.Pi / 180
		vs[i] = V(math.Cos(rad), math.Sin(rad))
	}
	return vs
}()

// UnitCircle returns the unit circle vertex table.
// The table is built once at init; callers get a copy and cannot alter it.
func UnitCircle() [CircleVertices]Vec2 {
	return unitCircle
}
