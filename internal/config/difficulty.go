package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset returns the preset named s, or false if s is unknown.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, true
	default:
		return "", false
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
// Normal leaves the config untouched.
func ApplyPreset(cfg *MazeConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		// Softer bounces and finer keyboard steps
		cfg.Physics.BounceReduction = 0.35
		cfg.Controls.TiltStep = 0.03
		cfg.Controls.MaxTilt = 0.4
	case DifficultyHard:
		// Lively bounces and a steep board
		cfg.Physics.BounceReduction = 0.75
		cfg.Controls.TiltStep = 0.08
		cfg.Controls.MaxTilt = 0.9
	}
}
