// Package formats parses level files into maze.LevelSpec values.
//
// Three encodings are understood: the XML record format (<maze size-x="..">
// with start, w, h and goal nodes), and YAML or TOML documents with the same
// fields. Parsers only decode; validation happens in maze.NewLevel.
package formats

import (
	"fmt"
	"strings"

	"github.com/zavo/tiltmaze/internal/maze"
)

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".xml", ".yaml", ".yml", ".toml"}
}

// Supported reports whether ext (with the leading dot) has a parser.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supported := range FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// Parse routes data to the parser registered for ext.
func Parse(ext string, data []byte) (maze.LevelSpec, error) {
	switch strings.ToLower(ext) {
	case ".xml":
		return ParseXML(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".toml":
		return ParseTOML(data)
	default:
		return maze.LevelSpec{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}

// document is the shared YAML/TOML shape of a level.
type document struct {
	ID    string         `yaml:"id" toml:"id"`
	Name  string         `yaml:"name" toml:"name"`
	Size  float64        `yaml:"size" toml:"size"`
	Start *pointDoc      `yaml:"start" toml:"start"`
	Walls []wallDoc      `yaml:"walls" toml:"walls"`
	Holes []holeDoc      `yaml:"holes" toml:"holes"`
	Goal  *holeDoc       `yaml:"goal" toml:"goal"`
	Meta  map[string]any `yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

type pointDoc struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
}

type wallDoc struct {
	X1 float64 `yaml:"x1" toml:"x1"`
	X2 float64 `yaml:"x2" toml:"x2"`
	Y1 float64 `yaml:"y1" toml:"y1"`
	Y2 float64 `yaml:"y2" toml:"y2"`
}

type holeDoc struct {
	X      float64  `yaml:"x" toml:"x"`
	Y      float64  `yaml:"y" toml:"y"`
	Radius *float64 `yaml:"radius,omitempty" toml:"radius,omitempty"`
}

func (d document) spec() maze.LevelSpec {
	spec := maze.LevelSpec{
		ID:   d.ID,
		Name: d.Name,
		Size: d.Size,
	}
	if d.Start != nil {
		spec.Start = &maze.Point{X: d.Start.X, Y: d.Start.Y}
	}
	for _, w := range d.Walls {
		spec.Walls = append(spec.Walls, maze.WallSpec{X1: w.X1, X2: w.X2, Y1: w.Y1, Y2: w.Y2})
	}
	for _, h := range d.Holes {
		spec.Holes = append(spec.Holes, h.spec())
	}
	if d.Goal != nil {
		goal := d.Goal.spec()
		spec.Goal = &goal
	}
	return spec
}

func (h holeDoc) spec() maze.HoleSpec {
	return maze.HoleSpec{X: h.X, Y: h.Y, Radius: h.Radius}
}
