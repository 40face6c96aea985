package tiltmaze

import (
	"fmt"

	"github.com/zavo/tiltmaze/internal/core"
	"github.com/zavo/tiltmaze/internal/maze"
)

// Minimum playable board, in cells, inside its frame.
const (
	minBoardRows = 8
	minBoardCols = minBoardRows * 2
)

const (
	glyphWall = '█'
	glyphHole = 'O'
	glyphRim  = 'o'
	glyphGoal = '◎'
	glyphBall = '●'
)

// Render draws the HUD, the board and any status overlay.
func (g *Game) Render(dst *core.Screen) {
	w, h := dst.Width(), dst.Height()

	outer := core.BoardRect(w, h-2)
	outer.Y++ // Below the HUD row
	board := core.NewRect(outer.X+1, outer.Y+1, outer.W-2, outer.H-2)

	if board.H < minBoardRows || board.W < minBoardCols {
		dst.DrawTextCentered(h/2, "Terminal too small", core.ColorYellow)
		return
	}

	if g.session == nil || g.session.Level() == nil {
		g.renderUnavailable(dst)
		return
	}

	snap := g.session.Snapshot()
	level := g.session.Level()

	g.renderHUD(dst, snap)
	dst.DrawBox(outer, core.ColorWhite)
	renderWalls(dst, board, level.Walls())
	renderHoles(dst, board, level.Holes())

	bx, by := board.Project(snap.Position.X, snap.Position.Y)
	dst.SetColored(bx, by, glyphBall, core.ColorBrightYellow)

	g.renderOverlay(dst, board, snap)

	dst.DrawTextColored(1, h-1, "←↑↓→/wasd tilt  c level  space tap  p pause  q quit", core.ColorGray)
}

func (g *Game) renderHUD(dst *core.Screen, snap maze.Snapshot) {
	o := g.sim.Orientation()

	left := fmt.Sprintf("%s  attempt %d  %5.1fs", snap.LevelName, snap.Attempt, snap.Elapsed.Seconds())
	dst.DrawTextColored(1, 0, left, core.ColorBrightWhite)

	right := fmt.Sprintf("tilt %+.2f %+.2f  done %d", o[1], o[2], snap.Completed)
	dst.DrawTextColored(dst.Width()-len(right)-1, 0, right, core.ColorCyan)
}

func renderWalls(dst *core.Screen, board core.Rect, walls []maze.Wall) {
	const inset = 1e-9 // Keeps an edge on a cell boundary in the inner cell

	for _, w := range walls {
		lo, hi := w.Bounds()
		x0, y0 := board.Project(lo.X, lo.Y)
		x1, y1 := board.Project(hi.X-inset, hi.Y-inset)
		dst.DrawRect(core.NewRect(x0, y0, x1-x0+1, y1-y0+1), glyphWall, core.ColorGray)
	}
}

func renderHoles(dst *core.Screen, board core.Rect, holes []maze.Hole) {
	rim := maze.UnitCircle()

	for _, h := range holes {
		color, center, edge := core.ColorRed, glyphHole, glyphRim
		if h.Goal {
			color, center, edge = core.ColorBrightGreen, glyphGoal, glyphGoal
		}

		for _, v := range rim {
			p := h.Center.Add(v.Scale(h.Radius))
			x, y := board.Project(p.X, p.Y)
			dst.SetColored(x, y, edge, color)
		}

		x, y := board.Project(h.Center.X, h.Center.Y)
		dst.SetColored(x, y, center, color)
	}
}

func (g *Game) renderOverlay(dst *core.Screen, board core.Rect, snap maze.Snapshot) {
	_, cy := board.Center()

	switch {
	case g.paused:
		dst.DrawTextCentered(cy, " PAUSED ", core.ColorYellow)
		dst.DrawTextCentered(cy+1, " press p to resume ", core.ColorGray)
	case snap.Status == maze.StatusLevelComplete:
		dst.DrawTextCentered(cy, " LEVEL COMPLETE ", core.ColorBrightGreen)
		dst.DrawTextCentered(cy+1, fmt.Sprintf(" %.1fs - space for the next level ", snap.Elapsed.Seconds()), core.ColorWhite)
	case snap.Status == maze.StatusLevelLost:
		dst.DrawTextCentered(cy, " LEVEL LOST ", core.ColorBrightRed)
		dst.DrawTextCentered(cy+1, " space to retry ", core.ColorWhite)
	case snap.Status == maze.StatusLoading && g.err != nil:
		dst.DrawTextCentered(cy, " cannot load the next level ", core.ColorBrightRed)
		dst.DrawTextCentered(cy+1, " space to try again ", core.ColorWhite)
	}
}

func (g *Game) renderUnavailable(dst *core.Screen) {
	y := dst.Height()/2 - 1

	dst.DrawTextCentered(y, "No level available", core.ColorBrightRed)
	if g.err != nil {
		dst.DrawTextCentered(y+1, clip(g.err.Error(), dst.Width()-2), core.ColorGray)
	}
	if g.session != nil {
		dst.DrawTextCentered(y+2, "space to try again", core.ColorWhite)
	}
}

// clip shortens s to at most limit runes.
func clip(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
