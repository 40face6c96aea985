package levels

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/zavo/tiltmaze/internal/maze"
)

// Level orders accepted by NewSource.
const (
	OrderRandom     = "random"
	OrderSequential = "sequential"
)

// RandomSource picks a uniformly random level on every request.
// Repeats are allowed.
type RandomSource struct {
	mu    sync.Mutex
	specs []maze.LevelSpec
	rng   *rand.Rand
}

// NewRandomSource creates a random source seeded with seed.
func NewRandomSource(specs []maze.LevelSpec, seed int64) (*RandomSource, error) {
	if len(specs) == 0 {
		return nil, ErrNoLevels
	}
	return &RandomSource{
		specs: specs,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Next implements maze.LevelSource.
func (s *RandomSource) Next() (maze.LevelSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.specs[s.rng.Intn(len(s.specs))], nil
}

// SequentialSource walks the levels in order and wraps around.
type SequentialSource struct {
	mu    sync.Mutex
	specs []maze.LevelSpec
	next  int
}

// NewSequentialSource creates a campaign source starting at the first level.
func NewSequentialSource(specs []maze.LevelSpec) (*SequentialSource, error) {
	if len(specs) == 0 {
		return nil, ErrNoLevels
	}
	return &SequentialSource{specs: specs}, nil
}

// Next implements maze.LevelSource.
func (s *SequentialSource) Next() (maze.LevelSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec := s.specs[s.next]
	s.next = (s.next + 1) % len(s.specs)
	return spec, nil
}

// SkipTo makes id the next level returned. It reports whether id exists.
func (s *SequentialSource) SkipTo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, spec := range s.specs {
		if spec.ID == id {
			s.next = i
			return true
		}
	}
	return false
}

// NewSource builds the source for the named order.
func NewSource(order string, specs []maze.LevelSpec, seed int64) (maze.LevelSource, error) {
	switch order {
	case OrderRandom, "":
		src, err := NewRandomSource(specs, seed)
		if err != nil {
			return nil, err
		}
		return src, nil
	case OrderSequential:
		src, err := NewSequentialSource(specs)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("levels: unknown order %q", order)
	}
}
