package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/stats"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// StatsPanel renders the live stats column: headline numbers, the category
// breakdown as bars and the attack/defense balance.
func StatsPanel(rep stats.Report, width, height int) string {
	if width < 5 {
		return ""
	}
	title := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	info := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Purple).Italic(true)

	lines := []string{title.Render("Live Stats"), ""}

	lines = append(lines, styles.Header.Render("Strikes"))
	lines = append(lines,
		info.Render(fmt.Sprintf(" Athlete:  %d (%d landed)", rep.Athlete.Total, rep.Athlete.Landed)),
		info.Render(fmt.Sprintf(" Correct:  %s", percent(rep.CorrectnessRate))),
		info.Render(fmt.Sprintf(" Opponent: %d (%d landed)", rep.Opponent.Total, rep.Opponent.Landed)),
	)
	if rep.Unassigned > 0 {
		lines = append(lines, info.Render(fmt.Sprintf(" Unassigned: %d", rep.Unassigned)))
	}
	lines = append(lines, "")

	lines = append(lines, styles.Header.Render("Defense"))
	lines = append(lines,
		info.Render(fmt.Sprintf(" Hits received: %d", rep.HitsReceived)),
		info.Render(fmt.Sprintf(" Defended: %d/%d", rep.Defense.Successful, rep.Defense.Successful+rep.Defense.Failed)),
		"",
	)

	lines = append(lines, styles.Header.Render("Categories"))
	if len(rep.Categories) == 0 {
		lines = append(lines, dim.Render(" No strikes yet"))
	} else {
		maxTotal := 0
		for _, c := range rep.Categories {
			maxTotal = max(maxTotal, c.Total)
		}
		barMax := max(width-14, 5)
		label := lipgloss.NewStyle().Foreground(styles.Lavender)
		landed := lipgloss.NewStyle().Foreground(styles.Green)
		missed := lipgloss.NewStyle().Foreground(styles.BrightPurple)
		count := lipgloss.NewStyle().Foreground(styles.Cyan)
		for _, c := range rep.Categories {
			n := max(c.Total*barMax/max(maxTotal, 1), 1)
			l := min(c.Landed*barMax/max(maxTotal, 1), n)
			lines = append(lines, fmt.Sprintf(" %s %s%s %s",
				label.Render(fmt.Sprintf("%-6s", c.Category)),
				landed.Render(strings.Repeat("█", l)),
				missed.Render(strings.Repeat("█", n-l)),
				count.Render(fmt.Sprint(c.Total)),
			))
		}
	}
	lines = append(lines, "")

	if rep.Mode != "manual" {
		lines = append(lines, styles.Header.Render("Balance"))
		lines = append(lines, " "+balanceBar(rep.AttackTime, rep.DefenseTime, max(width-2, 4)))
		lines = append(lines, info.Render(fmt.Sprintf(" %.2f  %s", rep.AttackDefenseRatio, rep.Style)))
	}

	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// balanceBar splits width between attack and defense time.
func balanceBar(attack, defense float64, width int) string {
	dim := lipgloss.NewStyle().Foreground(styles.Purple)
	total := attack + defense
	if total <= 0 {
		return dim.Render(strings.Repeat("░", width))
	}
	a := int(float64(width) * attack / total)
	return lipgloss.NewStyle().Foreground(styles.Attack).Render(strings.Repeat("█", a)) +
		lipgloss.NewStyle().Foreground(styles.Defense).Render(strings.Repeat("█", width-a))
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
