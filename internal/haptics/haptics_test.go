package haptics

import (
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/maze"
)

// drain reads a streamer to the end with a small buffer.
func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 7)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestStreamerLength(t *testing.T) {
	b := NewBuzzer(1000, 180, 0.3)

	tests := []struct {
		name    string
		pattern maze.Pattern
	}{
		{"lost", maze.LostPattern},
		{"complete", maze.CompletePattern},
		{"single short", maze.Pattern{15 * time.Millisecond}},
		{"empty", maze.Pattern{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			samples := drain(b.Streamer(tc.pattern))
			expected := int(tc.pattern.Total() / time.Millisecond)
			if len(samples) != expected {
				t.Errorf("got %d samples, expected %d", len(samples), expected)
			}
		})
	}
}

func TestStreamerAlternatesToneAndSilence(t *testing.T) {
	b := NewBuzzer(1000, 180, 0.3)
	p := maze.Pattern{10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}

	samples := drain(b.Streamer(p))
	if len(samples) != 30 {
		t.Fatalf("got %d samples, expected 30", len(samples))
	}

	for i, s := range samples {
		silent := i >= 10 && i < 20
		switch {
		case silent && (s[0] != 0 || s[1] != 0):
			t.Errorf("sample %d should be silent, got %v", i, s)
		case !silent && s[0] != 0.3 && s[0] != -0.3:
			t.Errorf("sample %d should be a full-volume square, got %v", i, s)
		case s[0] != s[1]:
			t.Errorf("sample %d channels differ: %v", i, s)
		}
	}
}

func TestSquareWaveFlips(t *testing.T) {
	// 250 Hz at 1000 Hz sampling: two samples high, two low
	b := NewBuzzer(1000, 250, 0.5)
	samples := drain(b.Streamer(maze.Pattern{8 * time.Millisecond}))

	expected := []float64{0.5, 0.5, -0.5, -0.5, 0.5, 0.5, -0.5, -0.5}
	for i, v := range expected {
		if samples[i][0] != v {
			t.Errorf("sample %d = %v, expected %v", i, samples[i][0], v)
		}
	}
}

func TestNewDisabledIsNop(t *testing.T) {
	cfg := config.DefaultMazeConfig().Haptics
	cfg.Enabled = false

	fb := New(cfg, nil)
	if _, ok := fb.(Nop); !ok {
		t.Fatalf("New() with haptics disabled = %T, expected Nop", fb)
	}

	// Must not panic without an audio device
	fb.Play(maze.CompletePattern)
	fb.Cancel()
}
