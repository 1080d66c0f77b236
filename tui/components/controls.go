// Package components renders the pieces of the annotation TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/tagging-fight-cli/tui/styles"
)

// Control is one key binding shown in a control box.
type Control struct {
	Name     string
	Shortcut string
}

// ControlGroup is a titled box of bindings. Sub-groups are separated by rules.
type ControlGroup struct {
	Name      string
	SubGroups [][]Control
}

// ControlGroups returns the bindings for the side column. Manual sessions
// replace the tagging keys with the tally grid keys.
func ControlGroups(manual bool) []ControlGroup {
	playback := ControlGroup{
		Name: "Playback",
		SubGroups: [][]Control{
			{
				{Name: "Play", Shortcut: "Space"},
				{Name: "Back", Shortcut: "H / ←"},
				{Name: "Fwd", Shortcut: "L / →"},
			},
			{
				{Name: "Step -", Shortcut: "<"},
				{Name: "Step +", Shortcut: ">"},
			},
		},
	}
	views := ControlGroup{
		Name: "Session",
		SubGroups: [][]Control{
			{
				{Name: "Stats", Shortcut: "S"},
				{Name: "Save", Shortcut: "Ctrl+S"},
				{Name: "Help", Shortcut: "?"},
				{Name: "Quit", Shortcut: "Q"},
			},
		},
	}
	if manual {
		return []ControlGroup{playback, {
			Name: "Tally",
			SubGroups: [][]Control{
				{
					{Name: "Move", Shortcut: "Arrows"},
					{Name: "+1", Shortcut: "+ / ="},
					{Name: "-1", Shortcut: "-"},
				},
				{
					{Name: "Round", Shortcut: "[ / ]"},
					{Name: "Actor", Shortcut: "Tab"},
					{Name: "Length", Shortcut: "D"},
				},
			},
		}, views}
	}
	views.SubGroups[0] = append([]Control{{Name: "Export", Shortcut: "Ctrl+E"}}, views.SubGroups[0]...)
	return []ControlGroup{playback, {
		Name: "Tagging",
		SubGroups: [][]Control{
			{
				{Name: "Round", Shortcut: "R"},
				{Name: "Attack", Shortcut: "A"},
				{Name: "Defense", Shortcut: "D"},
				{Name: "End phase", Shortcut: "X"},
			},
			{
				{Name: "Strike", Shortcut: "1-9 / T"},
				{Name: "Defend", Shortcut: "B"},
				{Name: "Hit", Shortcut: "G"},
				{Name: "Delete", Shortcut: "Del"},
			},
		},
	}, views}
}

// RenderInfoBox draws content lines in a rounded box with the title set into
// the top border:
//
//	╭─ Title ──────╮
//	│content       │
//	╰──────────────╯
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2
	border := lipgloss.NewStyle().Foreground(styles.Purple)

	head := styles.Header.Render(" " + title + " ")
	fill := inner - 1 - lipgloss.Width(head)
	if fill < 0 {
		fill = 0
	}
	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, border.Render("╭─")+head+border.Render(strings.Repeat("─", fill)+"╮"))

	side := border.Render("│")
	for _, line := range contentLines {
		if lipgloss.Width(line) > inner {
			line = ansi.Truncate(line, inner, "")
		}
		lines = append(lines, side+line+strings.Repeat(" ", inner-lipgloss.Width(line))+side)
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(lines, "\n")
}

// RenderControlBox draws a control group as a tabbed box with one binding
// per row and a rule between sub-groups:
//
//	 ┌──────────┐
//	┌┤ Playback ├┐
//	│└──────────┘└────────────┐
//	│ Play    [ Space ]       │
//	├─────────────────────────┤
//	│ Step -  [ < ]           │
//	└─────────────────────────┘
func RenderControlBox(group ControlGroup, width int) string {
	if width < 6 {
		return ""
	}
	border := lipgloss.NewStyle().Foreground(styles.Purple)
	nameStyle := lipgloss.NewStyle().Foreground(styles.LightLavender)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)

	inner := width - 2
	tab := " " + group.Name + " "
	tabW := lipgloss.Width(tab)
	rest := inner - tabW - 3
	if rest < 0 {
		rest = 0
	}
	lines := []string{
		" " + border.Render("┌"+strings.Repeat("─", tabW)+"┐"),
		border.Render("┌┤") + styles.Header.Render(tab) + border.Render("├┐"),
		border.Render("│└" + strings.Repeat("─", tabW) + "┘└" + strings.Repeat("─", rest) + "┐"),
	}

	nameW := 0
	for _, sg := range group.SubGroups {
		for _, c := range sg {
			nameW = max(nameW, len(c.Name))
		}
	}
	for i, sg := range group.SubGroups {
		for _, c := range sg {
			content := nameStyle.Render(fmt.Sprintf("%-*s", nameW, c.Name)) + "  " + keyStyle.Render("[ "+c.Shortcut+" ]")
			pad := max(inner-2-lipgloss.Width(content), 0)
			row := border.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + border.Render("│")
			if lipgloss.Width(row) > width {
				row = ansi.Truncate(row, width, "")
			}
			lines = append(lines, row)
		}
		if i < len(group.SubGroups)-1 {
			lines = append(lines, border.Render("├"+strings.Repeat("─", inner)+"┤"))
		}
	}
	lines = append(lines, border.Render("└"+strings.Repeat("─", inner)+"┘"))
	return strings.Join(lines, "\n")
}
