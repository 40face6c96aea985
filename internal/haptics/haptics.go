// Package haptics plays end-of-level cues as short buzzes on the speaker.
// A terminal has no vibration motor, so each "on" segment of a pattern is a
// square-wave tone and each "off" segment is silence.
package haptics

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/zavo/tiltmaze/internal/config"
	"github.com/zavo/tiltmaze/internal/maze"
)

// Speaker state is process-wide.
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
	speakerUp   bool
)

func initSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerUp {
		if rate != speakerRate {
			return fmt.Errorf("haptics: speaker already running at %d Hz", speakerRate)
		}
		return nil
	}

	if err := speaker.Init(rate, rate.N(time.Second/30)); err != nil {
		return fmt.Errorf("haptics: cannot open speaker: %w", err)
	}
	speakerRate = rate
	speakerUp = true
	return nil
}

// Buzzer renders patterns as tones.
type Buzzer struct {
	rate   beep.SampleRate
	freq   float64
	volume float64
}

// NewBuzzer creates a buzzer without touching the audio device.
func NewBuzzer(rate int, freq, volume float64) *Buzzer {
	return &Buzzer{
		rate:   beep.SampleRate(rate),
		freq:   freq,
		volume: volume,
	}
}

// Streamer builds the audio for p: tone for on segments, silence for off ones.
func (b *Buzzer) Streamer(p maze.Pattern) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(p))
	for i, d := range p {
		if i%2 == 0 {
			parts = append(parts, b.square(d))
		} else {
			parts = append(parts, beep.Silence(b.rate.N(d)))
		}
	}
	return beep.Seq(parts...)
}

func (b *Buzzer) square(d time.Duration) beep.Streamer {
	remaining := b.rate.N(d)
	phase := 0.0
	phaseStep := b.freq / float64(b.rate)

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if remaining <= 0 {
				return i, i > 0
			}
			val := b.volume
			if phase >= 0.5 {
				val = -val
			}
			samples[i][0] = val
			samples[i][1] = val
			phase += phaseStep
			phase -= math.Floor(phase)
			remaining--
		}
		return len(samples), true
	})
}

// Speaker plays cues on the default audio device.
type Speaker struct {
	buzzer *Buzzer
	logger *log.Logger
}

// Play implements maze.Feedback. A new cue replaces any cue still playing.
func (s *Speaker) Play(p maze.Pattern) {
	s.logger.Debug("haptic cue", "segments", len(p), "total", p.Total())
	speaker.Clear()
	speaker.Play(s.buzzer.Streamer(p))
}

// Cancel implements maze.Feedback.
func (s *Speaker) Cancel() {
	speaker.Clear()
}

// Nop is the feedback used when haptics are disabled or unavailable.
type Nop struct{}

func (Nop) Play(maze.Pattern) {}
func (Nop) Cancel()           {}

// New returns speaker-backed feedback, or Nop when disabled.
// When the audio device cannot be opened it logs a warning and returns Nop.
func New(cfg config.HapticsConfig, logger *log.Logger) maze.Feedback {
	if !cfg.Enabled {
		return Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rate := beep.SampleRate(cfg.SampleRate)
	if err := initSpeaker(rate); err != nil {
		logger.Warn("haptics disabled", "error", err)
		return Nop{}
	}

	return &Speaker{
		buzzer: NewBuzzer(cfg.SampleRate, cfg.Frequency, cfg.Volume),
		logger: logger,
	}
}

// Close releases the audio device if it was opened.
func Close() {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerUp {
		speaker.Clear()
		speaker.Close()
		speakerUp = false
	}
}
