package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// PhaseState is what is open at the playhead: the current round and the
// current attack or defense phase.
type PhaseState struct {
	Round      int
	RoundStart float64
	RoundOpen  bool
	// Action is "attack", "defense" or empty.
	Action      string
	ActionStart float64
	Now         float64
	// Manual sessions have no phases; Mode is shown instead.
	Manual bool
}

// Summary is a one-line description for narrow views.
func (p PhaseState) Summary() string {
	if p.Manual {
		return "Manual tally"
	}
	s := "No round open"
	if p.RoundOpen {
		s = fmt.Sprintf("Round %d", p.Round)
	}
	if p.Action != "" {
		s += " · " + p.Action
	}
	return s
}

// PhaseBox renders the open round and phase with their running time.
func PhaseBox(p PhaseState, width int) string {
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)

	if p.Manual {
		return RenderInfoBox("Phase", []string{text.Render(" Manual tally"), dim.Render(" counts per round, no clock")}, width)
	}

	var lines []string
	if p.RoundOpen {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Round).Bold(true).
			Render(fmt.Sprintf(" ● Round %d", p.Round))+
			dim.Render(" "+timeutil.FormatClock(max(p.Now-p.RoundStart, 0))))
	} else {
		lines = append(lines, dim.Render(" ○ No round open"))
	}

	switch p.Action {
	case "attack":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Attack).Bold(true).Render(" ▲ Attack")+
			dim.Render(" "+timeutil.FormatClock(max(p.Now-p.ActionStart, 0))))
	case "defense":
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Defense).Bold(true).Render(" ▼ Defense")+
			dim.Render(" "+timeutil.FormatClock(max(p.Now-p.ActionStart, 0))))
	default:
		lines = append(lines, dim.Render(" ○ No phase open"))
	}
	return RenderInfoBox("Phase", lines, width)
}
