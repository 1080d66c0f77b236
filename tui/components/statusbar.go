package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// StatusBarState is the playback state polled from the player.
type StatusBarState struct {
	Connected bool
	Paused    bool
	TimePos   float64
	Duration  float64
	StepSize  float64
	// Session is the short draft label shown on the right.
	Session string
	// Unsaved is set when the draft changed since the last database save.
	Unsaved bool
}

// StatusBar renders the top line: play state and clock on the left, step,
// session and save state on the right.
func StatusBar(state StatusBarState, width int) string {
	icon := "▶"
	if state.Paused {
		icon = "⏸"
	}
	if !state.Connected {
		icon = "✗"
	}
	left := fmt.Sprintf(" %s %s / %s", icon, timeutil.FormatClock(state.TimePos), timeutil.FormatClock(state.Duration))

	right := "Step: " + FormatStepSize(state.StepSize)
	if state.Session != "" {
		right += "  " + state.Session
	}
	if state.Unsaved {
		right += " ●"
	}
	right += " "

	pad := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return styles.Bar.Bold(true).Width(width).Render(left + strings.Repeat(" ", pad) + right)
}

// FormatStepSize shows sub-second steps with one decimal.
func FormatStepSize(step float64) string {
	if step < 1 {
		return fmt.Sprintf("%.1fs", step)
	}
	return fmt.Sprintf("%.0fs", step)
}
