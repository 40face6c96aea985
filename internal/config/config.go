// Package config provides YAML-based configuration loading and difficulty
// presets for the maze.
package config

import (
	"fmt"

	"github.com/zavo/tiltmaze/internal/maze"
)

// MazeConfig contains all configuration for the tilt maze.
type MazeConfig struct {
	Physics  PhysicsConfig  `yaml:"physics"`
	Controls ControlsConfig `yaml:"controls"`
	Haptics  HapticsConfig  `yaml:"haptics"`
	Levels   LevelsConfig   `yaml:"levels"`
	Sensor   SensorConfig   `yaml:"sensor"`
}

// PhysicsConfig tunes the simulation.
type PhysicsConfig struct {
	BounceReduction float64 `yaml:"bounce_reduction"` // Velocity kept after a bounce
	TiltThreshold   float64 `yaml:"tilt_threshold"`   // Radians ignored around level
}

// ControlsConfig maps keyboard input to tilt.
type ControlsConfig struct {
	TiltStep float64 `yaml:"tilt_step"` // Radians added per key press
	MaxTilt  float64 `yaml:"max_tilt"`  // Clamp for keyboard tilt, radians
}

// HapticsConfig defines how feedback cues are played.
type HapticsConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Frequency  float64 `yaml:"frequency"`   // Tone frequency in Hz
	Volume     float64 `yaml:"volume"`      // 0.0 to 1.0
	SampleRate int     `yaml:"sample_rate"` // Speaker sample rate
}

// LevelsConfig selects the level set and the order levels are played in.
type LevelsConfig struct {
	Order string `yaml:"order"` // "random" or "sequential"
	Dir   string `yaml:"dir"`   // Empty means the built-in levels
}

// SensorConfig configures the WebSocket orientation server.
type SensorConfig struct {
	Address string `yaml:"address"`
}

// Params returns the simulation parameters.
func (c MazeConfig) Params() maze.Params {
	return maze.Params{
		BounceReduction: c.Physics.BounceReduction,
		TiltThreshold:   c.Physics.TiltThreshold,
	}
}

// Validate checks ranges that would make the maze unplayable.
func (c MazeConfig) Validate() error {
	if c.Physics.BounceReduction < 0 || c.Physics.BounceReduction > 1 {
		return fmt.Errorf("physics.bounce_reduction must be in [0, 1], got %v", c.Physics.BounceReduction)
	}
	if c.Physics.TiltThreshold < 0 {
		return fmt.Errorf("physics.tilt_threshold must not be negative, got %v", c.Physics.TiltThreshold)
	}
	if c.Controls.TiltStep <= 0 {
		return fmt.Errorf("controls.tilt_step must be positive, got %v", c.Controls.TiltStep)
	}
	if c.Controls.MaxTilt < c.Controls.TiltStep {
		return fmt.Errorf("controls.max_tilt must be at least tilt_step, got %v", c.Controls.MaxTilt)
	}
	if c.Haptics.Volume < 0 || c.Haptics.Volume > 1 {
		return fmt.Errorf("haptics.volume must be in [0, 1], got %v", c.Haptics.Volume)
	}
	switch c.Levels.Order {
	case "random", "sequential":
	default:
		return fmt.Errorf("levels.order must be random or sequential, got %q", c.Levels.Order)
	}
	return nil
}
