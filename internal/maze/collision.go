package maze

// DefaultBounceReduction scales the velocity on each reflecting collision.
const DefaultBounceReduction = 0.53

// Outcome is the result of one collision pass.
type Outcome int

const (
	Continue Outcome = iota // Ball still rolling
	HitHole                 // Ball fell into a hole
	HitGoal                 // Ball fell into the goal
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case HitHole:
		return "hole"
	case HitGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// State is the mutable kinematic state of the ball.
type State struct {
	Position     Vec2
	Velocity     Vec2
	Acceleration Vec2
}

// Resolver detects and resolves collisions on an already advanced state.
// Detection is discrete: a fast ball can pass through a thin wall between two steps.
type Resolver struct {
	Bounce float64
}

// NewResolver creates a resolver with the given bounce reduction.
func NewResolver(bounce float64) Resolver {
	return Resolver{Bounce: bounce}
}

// Resolve checks borders, then walls, then holes, and returns the outcome.
func (r Resolver) Resolve(s *State, level *Level) Outcome {
	radius := level.ball.Radius
	r.Borders(s, radius)
	r.Walls(s, radius, level.walls)
	return r.Holes(s.Position, level.holes)
}

// Borders reflects the ball back inside the board.
// Each axis is checked independently; returns true on any reflection.
func (r Resolver) Borders(s *State, radius float64) bool {
	collision := false

	// Left, else right
	if s.Position.X < radius-1 {
		s.Position.X = 2*radius - s.Position.X - 2
		r.bounceX(s)
		collision = true
	} else if s.Position.X > 1-radius {
		s.Position.X = 2*(1-radius) - s.Position.X
		r.bounceX(s)
		collision = true
	}

	// Top, else bottom
	if s.Position.Y < radius-1 {
		s.Position.Y = 2*radius - s.Position.Y - 2
		r.bounceY(s)
		collision = true
	} else if s.Position.Y > 1-radius {
		s.Position.Y = 2*(1-radius) - s.Position.Y
		r.bounceY(s)
		collision = true
	}

	return collision
}

// Walls reflects the ball off every wall it penetrates.
//
// The collision axis is the one with the larger margin between the center
// distance and the half-size. The two axis checks are not exclusive: when the
// margins are equal both run, so a ball entering exactly at a corner resolves
// on both axes in one pass.
func (r Resolver) Walls(s *State, radius float64, walls []Wall) bool {
	collision := false

	for _, w := range walls {
		c, h := w.Center, w.HalfSize
		d := s.Position.Sub(c).Abs()

		if d.X-h.X >= d.Y-h.Y && d.X < h.X+radius {
			if s.Position.X <= c.X {
				s.Position.X = 2*(c.X-h.X) - s.Position.X - 2*radius
			} else {
				s.Position.X = 2*(c.X+h.X) - s.Position.X + 2*radius
			}
			r.bounceX(s)
			collision = true
		}

		if d.X-h.X <= d.Y-h.Y && d.Y < h.Y+radius {
			if s.Position.Y <= c.Y {
				s.Position.Y = 2*(c.Y-h.Y) - s.Position.Y - 2*radius
			} else {
				s.Position.Y = 2*(c.Y+h.Y) - s.Position.Y + 2*radius
			}
			r.bounceY(s)
			collision = true
		}
	}

	return collision
}

// Holes returns the outcome for the first hole, in insertion order, containing pos.
func (r Resolver) Holes(pos Vec2, holes []Hole) Outcome {
	for _, h := range holes {
		if h.Contains(pos) {
			if h.Goal {
				return HitGoal
			}
			return HitHole
		}
	}
	return Continue
}

func (r Resolver) bounceX(s *State) {
	s.Velocity.X = -(s.Velocity.X * r.Bounce)
	s.Acceleration.X = 0
}

func (r Resolver) bounceY(s *State) {
	s.Velocity.Y = -(s.Velocity.Y * r.Bounce)
	s.Acceleration.Y = 0
}
