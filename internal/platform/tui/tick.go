// Package tui provides the Bubble Tea front end for the maze: the frame loop,
// key mapping, menu, scoreboard and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger one frame. Its timestamp is not read: the maze
// times each step with its own clock.
type TickMsg time.Time

// tickCmd returns a command that sends a TickMsg after one frame interval.
// The maze measures real elapsed time, so a late tick only means a longer step.
func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 60
	}
	interval := time.Second / time.Duration(fps)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
