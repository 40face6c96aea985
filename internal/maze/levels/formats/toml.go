package formats

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zavo/tiltmaze/internal/maze"
)

// ParseTOML parses a TOML level document. Unknown keys are rejected.
//
//	size = 400
//	start = { x = 200, y = 200 }
//	goal = { x = 350, y = 350 }
//
//	[[walls]]
//	x1 = 100
//	x2 = 300
//	y1 = 100
//	y2 = 110
func ParseTOML(data []byte) (maze.LevelSpec, error) {
	var doc document

	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return maze.LevelSpec{}, &maze.LevelFormatError{Err: err}
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return maze.LevelSpec{}, &maze.LevelFormatError{
			Level: doc.ID,
			Field: keys[0],
			Err:   fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")),
		}
	}

	return doc.spec(), nil
}
