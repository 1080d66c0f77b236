package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/tagging-fight-cli/tui/styles"
)

// ExportProgressState tracks a running clip cut.
type ExportProgressState struct {
	Active    bool
	Total     int
	Completed int
	Errors    int
	// Current is the label of the clip last finished.
	Current string
	// Dir is where clips are written.
	Dir string
}

// Done reports whether every clip has been processed.
func (s ExportProgressState) Done() bool {
	return s.Total > 0 && s.Completed >= s.Total
}

// ExportProgress renders a progress bar with the clip counter and the last
// finished clip.
func ExportProgress(state ExportProgressState, width int) string {
	if !state.Active || width < 10 {
		return ""
	}
	green := lipgloss.NewStyle().Foreground(styles.Green)
	amber := lipgloss.NewStyle().Foreground(styles.Amber)
	red := lipgloss.NewStyle().Foreground(styles.Red)
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)

	innerW := max(width-4, 6)
	barW := max(innerW-6, 4)
	pct, filled := 0, 0
	if state.Total > 0 {
		pct = state.Completed * 100 / state.Total
		filled = min(barW*state.Completed/state.Total, barW)
	}
	lines := []string{
		" " + green.Render(strings.Repeat("█", filled)) + amber.Render(strings.Repeat("░", barW-filled)) + text.Render(fmt.Sprintf(" %3d%%", pct)),
	}

	counter := fmt.Sprintf(" %d/%d clips", state.Completed, state.Total)
	if state.Errors > 0 {
		counter += "  " + red.Render(fmt.Sprintf("%d failed", state.Errors))
	}
	lines = append(lines, text.Render(counter))

	switch {
	case state.Done():
		msg := "Clips written"
		if state.Dir != "" {
			msg += " to " + state.Dir
		}
		lines = append(lines, " "+green.Render(ansi.Truncate(msg, innerW-2, "…")))
	case state.Current != "":
		lines = append(lines, " "+text.Render(ansi.Truncate(state.Current, innerW-2, "…")))
	}
	return RenderInfoBox("Clips", lines, width)
}
