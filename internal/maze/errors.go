package maze

import (
	"errors"
	"fmt"
)

// ErrLevelFormat is matched by every LevelFormatError via errors.Is.
var ErrLevelFormat = errors.New("maze: invalid level format")

// LevelFormatError reports a level that cannot be built: a missing required
// field, an unparseable number or a malformed structure.
// It is fatal for that level only.
type LevelFormatError struct {
	Level string // Level ID or file path, may be empty
	Field string // Offending element or attribute, e.g. "goal" or "w[3].x2"
	Err   error  // Underlying cause, may be nil
}

// Error implements error.
func (e *LevelFormatError) Error() string {
	msg := "maze: invalid level"
	if e.Level != "" {
		msg += " " + e.Level
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": %s", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *LevelFormatError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrLevelFormat) hold for any LevelFormatError.
func (e *LevelFormatError) Is(target error) bool {
	return target == ErrLevelFormat
}

// formatErr is a shorthand used while validating a LevelSpec.
func formatErr(level, field string, format string, args ...any) *LevelFormatError {
	return &LevelFormatError{Level: level, Field: field, Err: fmt.Errorf(format, args...)}
}
