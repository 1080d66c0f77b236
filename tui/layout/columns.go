// Package layout sizes and joins the TUI columns.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/tui/styles"
)

// Breakpoints of the responsive layout.
const (
	// MinTerminalWidth is the narrowest terminal that gets columns at all;
	// below it the mini player is shown.
	MinTerminalWidth = 80
	// StatsColumnThreshold is the narrowest terminal that shows the stats column.
	StatsColumnThreshold = 100
	// StatsColumnMinWidth is the stats column width on medium terminals.
	StatsColumnMinWidth = 28
)

// Widths are the column widths for one terminal width. Stats is 0 when the
// stats column is hidden.
type Widths struct {
	Side   int
	Events int
	Stats  int
}

// List returns the visible widths in render order.
func (w Widths) List() []int {
	if w.Stats == 0 {
		return []int{w.Side, w.Events}
	}
	return []int{w.Side, w.Events, w.Stats}
}

// ComputeWidths splits the terminal into the side column (player and phase
// state), the event list and, when there is room, the live stats. One cell is
// reserved per separator.
func ComputeWidths(termWidth int) Widths {
	if termWidth < StatsColumnThreshold {
		usable := termWidth - 1
		side := usable * 2 / 5
		return Widths{Side: side, Events: usable - side}
	}
	usable := termWidth - 2
	if termWidth >= 140 {
		side := usable / 4
		stats := usable / 3
		return Widths{Side: side, Events: usable - side - stats, Stats: stats}
	}
	stats := StatsColumnMinWidth
	side := (usable - stats) * 2 / 5
	return Widths{Side: side, Events: usable - stats - side, Stats: stats}
}

// JoinColumns places rendered columns side by side, separated by a rule,
// each normalized to height lines and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	sep := lipgloss.NewStyle().Foreground(styles.Purple).Render("│")
	split := make([][]string, len(columns))
	for i, col := range columns {
		split[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}
	rows := make([]string, height)
	parts := make([]string, len(columns))
	for r := 0; r < height; r++ {
		for i := range split {
			parts[i] = PadToWidth(split[i][r], widths[i])
		}
		rows[r] = strings.Join(parts, sep)
	}
	return strings.Join(rows, "\n")
}
