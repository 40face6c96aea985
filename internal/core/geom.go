// Package core provides fundamental types and utilities for the maze front end.
// It has no Bubble Tea dependency so game logic stays pure and testable.
package core

import "math"

// Rect is an axis-aligned area of the screen, in character cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Project maps a normalized board coordinate in [-1, 1] to a cell inside r.
// -1 maps to the first cell and 1 to the last.
func (r Rect) Project(nx, ny float64) (int, int) {
	return r.X + projectAxis(nx, r.W), r.Y + projectAxis(ny, r.H)
}

func projectAxis(n float64, cells int) int {
	if cells <= 0 {
		return 0
	}
	i := int(math.Floor((n + 1) / 2 * float64(cells)))
	return Clamp(i, 0, cells-1)
}

// BoardRect returns the largest board area centered in a w x h region whose
// on-screen shape is square, given that a cell is twice as tall as wide.
func BoardRect(w, h int) Rect {
	rows := min(h, w/2)
	cols := rows * 2
	return NewRect((w-cols)/2, (h-rows)/2, cols, rows)
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
