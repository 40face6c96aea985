package tiltmaze

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zavo/tiltmaze/internal/maze"
)

// Snapshot captures the game state for determinism checks and replay.
type Snapshot struct {
	Mode      string
	Status    maze.Status
	LevelID   string
	Attempt   int
	Completed int
	Paused    bool
	Position  maze.Vec2
	Velocity  maze.Vec2
	Tilt      maze.Orientation
}

// Snapshot returns the current state. Before Reset it only carries the mode.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:   string(g.mode),
		Paused: g.paused,
		Tilt:   g.sim.Orientation(),
	}
	if g.session == nil {
		return snap
	}

	s := g.session.Snapshot()
	snap.Status = s.Status
	snap.LevelID = s.LevelID
	snap.Attempt = s.Attempt
	snap.Completed = s.Completed
	snap.Position = s.Position
	snap.Velocity = s.Velocity
	return snap
}

// Hash returns a stable digest of the snapshot.
// Floats are hashed by bit pattern, so equal hashes mean bit-identical runs.
func (s Snapshot) Hash() uint64 {
	d := xxhash.New()

	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		d.Write(buf[:])
	}
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		d.Write(buf[:])
	}

	d.WriteString(s.Mode)
	d.Write([]byte{0})
	d.WriteString(s.LevelID)
	d.Write([]byte{0})
	putInt(int64(s.Status))
	putInt(int64(s.Attempt))
	putInt(int64(s.Completed))
	if s.Paused {
		putInt(1)
	} else {
		putInt(0)
	}
	putFloat(s.Position.X)
	putFloat(s.Position.Y)
	putFloat(s.Velocity.X)
	putFloat(s.Velocity.Y)
	for _, a := range s.Tilt {
		putFloat(a)
	}
	return d.Sum64()
}
