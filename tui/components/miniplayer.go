package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// RenderMiniPlayer is the whole view on terminals too narrow for columns:
// playback state and the open phases, centered.
func RenderMiniPlayer(state StatusBarState, phase PhaseState, termWidth int) string {
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	hint := lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)

	icon := "▶ Playing"
	if state.Paused {
		icon = "⏸ Paused"
	}
	content := []string{
		text.Render(fmt.Sprintf(" %s  Step: %s", icon, FormatStepSize(state.StepSize))),
		text.Render(fmt.Sprintf(" %s / %s", timeutil.FormatClock(state.TimePos), timeutil.FormatClock(state.Duration))),
		text.Render(" " + phase.Summary()),
	}
	cardW := 4
	for _, c := range content {
		cardW = max(cardW, lipgloss.Width(c)+3)
	}
	card := RenderInfoBox("Playback", content, min(cardW, termWidth))

	if pad := (termWidth - cardW) / 2; pad > 0 {
		lines := strings.Split(card, "\n")
		for i := range lines {
			lines[i] = strings.Repeat(" ", pad) + lines[i]
		}
		card = strings.Join(lines, "\n")
	}
	warning := hint.Render("Widen the terminal for the full view")
	wpad := max((termWidth-lipgloss.Width(warning))/2, 0)
	return card + "\n" + strings.Repeat(" ", wpad) + warning
}
