package config

import (
	_ "embed"

	"github.com/zavo/tiltmaze/internal/maze"
)

//go:embed defaults/maze.yaml
var defaultMazeYAML []byte

// DefaultMazeConfig returns the default maze configuration.
func DefaultMazeConfig() MazeConfig {
	return MazeConfig{
		Physics: PhysicsConfig{
			BounceReduction: maze.DefaultBounceReduction,
			TiltThreshold:   maze.DefaultTiltThreshold,
		},
		Controls: ControlsConfig{
			TiltStep: 0.05,
			MaxTilt:  0.6,
		},
		Haptics: HapticsConfig{
			Enabled:    true,
			Frequency:  180,
			Volume:     0.3,
			SampleRate: 44100,
		},
		Levels: LevelsConfig{
			Order: "random",
		},
		Sensor: SensorConfig{
			Address: ":8765",
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultMazeYAML
}
