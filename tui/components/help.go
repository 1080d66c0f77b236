package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/tui/styles"
)

type binding struct {
	key  string
	desc string
}

type bindingGroup struct {
	title    string
	bindings []binding
}

func helpGroups(manual bool) []bindingGroup {
	groups := []bindingGroup{
		{"Playback", []binding{
			{"Space", "Play / pause"},
			{"H / ←", "Step backward"},
			{"L / →", "Step forward"},
			{"< / >", "Smaller / larger step"},
		}},
	}
	if manual {
		groups = append(groups, bindingGroup{"Tally", []binding{
			{"Arrows", "Move in the grid"},
			{"+ / =", "Add one to the cell"},
			{"-", "Remove one from the cell"},
			{"[ / ]", "Previous / next round"},
			{"Tab", "Switch athlete / opponent"},
			{"D", "Set the round length"},
		}})
	} else {
		groups = append(groups,
			bindingGroup{"Phases", []binding{
				{"R", "Start / end a round"},
				{"A", "Start an attack phase"},
				{"D", "Start a defense phase"},
				{"X", "End the open phase"},
			}},
			bindingGroup{"Events", []binding{
				{"1-9", "Tag the strike type on that key"},
				{"T", "Tag a strike from the list"},
				{"B", "Tag a defense"},
				{"G", "Toggle hit / success of selection"},
				{"Del", "Remove selection"},
				{"J / K", "Select next / previous event"},
				{"Enter", "Seek to selection"},
			}},
		)
	}
	groups = append(groups, bindingGroup{"Session", []binding{
		{"S", "Stats view"},
		{"Ctrl+S", "Save to the database"},
		{"Ctrl+E", "Cut clips of the timeline"},
		{":", "Command mode"},
		{"?", "Show / hide this help"},
		{"Q", "Quit"},
	}})
	return groups
}

// HelpOverlay renders the keybinding panel centered in the terminal.
func HelpOverlay(manual bool, width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Padding(0, 1)
	groupStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).MarginTop(1)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Width(10)
	descStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)

	lines := []string{titleStyle.Render("Keybindings"), ""}
	for _, g := range helpGroups(manual) {
		lines = append(lines, groupStyle.Render(g.title))
		for _, b := range g.bindings {
			lines = append(lines, "  "+keyStyle.Render(b.key)+descStyle.Render(b.desc))
		}
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true).Render("Press any key to close"))
	content := strings.Join(lines, "\n")

	panel := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
