package formats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zavo/tiltmaze/internal/maze"
)

// XML element and attribute names of the record format.
const (
	xmlSizeAttr = "size-x"
	xmlNameAttr = "name"
	xmlStart    = "start"
	xmlWall     = "w"
	xmlHole     = "h"
	xmlGoal     = "goal"
)

// ParseXML parses the XML record format:
//
//	<maze size-x="400">
//	  <start x="20" y="20"/>
//	  <w x1="0" x2="300" y1="80" y2="90"/>
//	  <h x="150" y="40" radius="9"/>
//	  <goal x="380" y="380"/>
//	</maze>
//
// The root element carries the board size. start, w, h and goal are matched
// at any depth, in document order; the first start wins. The hole radius is
// optional on h and goal.
func ParseXML(data []byte) (maze.LevelSpec, error) {
	var (
		spec    maze.LevelSpec
		rooted  bool
		walls   int
		holes   int
		hasSize bool
	)

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return maze.LevelSpec{}, &maze.LevelFormatError{Level: spec.ID, Err: err}
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !rooted {
			rooted = true
			spec.Name = attr(el, xmlNameAttr)
			if raw, ok := lookup(el, xmlSizeAttr); ok {
				size, err := parseFloat(raw)
				if err != nil {
					return maze.LevelSpec{}, &maze.LevelFormatError{Field: xmlSizeAttr, Err: err}
				}
				spec.Size = size
				hasSize = true
			}
			continue
		}

		switch el.Name.Local {
		case xmlStart:
			if spec.Start != nil {
				continue
			}
			var p maze.Point
			if err := floats(el, xmlStart, []string{"x", "y"}, &p.X, &p.Y); err != nil {
				return maze.LevelSpec{}, err
			}
			spec.Start = &p

		case xmlWall:
			var w maze.WallSpec
			field := fmt.Sprintf("%s[%d]", xmlWall, walls)
			if err := floats(el, field, []string{"x1", "x2", "y1", "y2"}, &w.X1, &w.X2, &w.Y1, &w.Y2); err != nil {
				return maze.LevelSpec{}, err
			}
			spec.Walls = append(spec.Walls, w)
			walls++

		case xmlHole:
			field := fmt.Sprintf("%s[%d]", xmlHole, holes)
			h, err := hole(el, field)
			if err != nil {
				return maze.LevelSpec{}, err
			}
			spec.Holes = append(spec.Holes, h)
			holes++

		case xmlGoal:
			if spec.Goal != nil {
				return maze.LevelSpec{}, &maze.LevelFormatError{
					Field: xmlGoal,
					Err:   errors.New("more than one goal"),
				}
			}
			h, err := hole(el, xmlGoal)
			if err != nil {
				return maze.LevelSpec{}, err
			}
			spec.Goal = &h
		}
	}

	if !rooted {
		return maze.LevelSpec{}, &maze.LevelFormatError{Err: errors.New("empty document")}
	}
	if !hasSize {
		return maze.LevelSpec{}, &maze.LevelFormatError{Field: xmlSizeAttr, Err: errors.New("missing attribute")}
	}

	return spec, nil
}

func hole(el xml.StartElement, field string) (maze.HoleSpec, error) {
	var h maze.HoleSpec
	if err := floats(el, field, []string{"x", "y"}, &h.X, &h.Y); err != nil {
		return h, err
	}
	if raw, ok := lookup(el, "radius"); ok {
		r, err := parseFloat(raw)
		if err != nil {
			return h, &maze.LevelFormatError{Field: field + ".radius", Err: err}
		}
		h.Radius = &r
	}
	return h, nil
}

// floats reads the named required attributes into dst, in order.
func floats(el xml.StartElement, field string, names []string, dst ...*float64) error {
	for i, name := range names {
		raw, ok := lookup(el, name)
		if !ok {
			return &maze.LevelFormatError{Field: field + "." + name, Err: errors.New("missing attribute")}
		}
		v, err := parseFloat(raw)
		if err != nil {
			return &maze.LevelFormatError{Field: field + "." + name, Err: err}
		}
		*dst[i] = v
	}
	return nil
}

func lookup(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func attr(el xml.StartElement, name string) string {
	v, _ := lookup(el, name)
	return v
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}
