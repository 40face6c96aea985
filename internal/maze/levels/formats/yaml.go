package formats

import (
	"bytes"
	"errors"
	"io"

	"github.com/zavo/tiltmaze/internal/maze"
	"gopkg.in/yaml.v3"
)

// ParseYAML parses a YAML level document. Unknown keys are rejected.
//
//	size: 400
//	start: {x: 200, y: 200}
//	walls:
//	  - {x1: 100, x2: 300, y1: 100, y2: 110}
//	holes:
//	  - {x: 50, y: 50, radius: 9}
//	goal: {x: 350, y: 350}
func ParseYAML(data []byte) (maze.LevelSpec, error) {
	var doc document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return maze.LevelSpec{}, &maze.LevelFormatError{Err: errors.New("empty document")}
		}
		return maze.LevelSpec{}, &maze.LevelFormatError{Level: doc.ID, Err: err}
	}

	return doc.spec(), nil
}
