package layout

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/tui/styles"
)

// Container clips content to a Width x Height box. Overflowing content ends
// with a "more" line instead of being cut silently.
type Container struct {
	Width  int
	Height int
}

// Render returns exactly Height lines of exactly Width cells.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if len(lines) > c.Height {
		hidden := len(lines) - c.Height + 1
		lines = lines[:c.Height]
		lines[c.Height-1] = lipgloss.NewStyle().Foreground(styles.Purple).
			Render("↓ " + strconv.Itoa(hidden) + " more")
	}
	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
