package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/stats"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// SortColumn is the column the rounds table is ordered by.
type SortColumn int

const (
	SortByRound SortColumn = iota
	SortByStrikes
	SortByLanded
	SortByCorrectness
	SortByOpponent
	SortByHitsReceived
	SortByDefenses
)

var sortNames = []string{"Round", "Strikes", "Landed", "Correct", "Opp", "Hits recv", "Defended"}

// StatsViewState is the full-screen report: a sortable rounds table with
// the fight totals above it.
type StatsViewState struct {
	Active        bool
	SortColumn    SortColumn
	SelectedIndex int
	ScrollOffset  int
}

// NextSortColumn cycles the sort column.
func (s *StatsViewState) NextSortColumn() {
	s.SortColumn = (s.SortColumn + 1) % SortColumn(len(sortNames))
}

func (s *StatsViewState) MoveUp() {
	if s.SelectedIndex > 0 {
		s.SelectedIndex--
	}
}

func (s *StatsViewState) MoveDown(rows int) {
	if s.SelectedIndex < rows-1 {
		s.SelectedIndex++
	}
}

// SortedRounds returns the report's rounds in the current order. Ties keep
// round order.
func (s StatsViewState) SortedRounds(rep stats.Report) []stats.RoundStats {
	rounds := make([]stats.RoundStats, len(rep.Rounds))
	copy(rounds, rep.Rounds)
	key := func(r stats.RoundStats) float64 {
		switch s.SortColumn {
		case SortByStrikes:
			return float64(r.Athlete.Total)
		case SortByLanded:
			return float64(r.Athlete.Landed)
		case SortByCorrectness:
			return r.Athlete.CorrectnessRate
		case SortByOpponent:
			return float64(r.Opponent.Total)
		case SortByHitsReceived:
			return float64(r.HitsReceived)
		case SortByDefenses:
			return float64(r.Defense.Successful)
		}
		return 0
	}
	sort.SliceStable(rounds, func(i, j int) bool {
		if s.SortColumn == SortByRound {
			return rounds[i].Number < rounds[j].Number
		}
		return key(rounds[i]) > key(rounds[j])
	})
	return rounds
}

// StatsView renders the report centered in a panel.
func StatsView(state StatsViewState, rep stats.Report, label string, width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Padding(0, 1)
	subtitleStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true).Padding(0, 1)
	info := lipgloss.NewStyle().Foreground(styles.LightLavender)

	lines := []string{
		titleStyle.Render("Fight Statistics"),
		subtitleStyle.Render(label),
		subtitleStyle.Render(fmt.Sprintf("Sorted by: %s | Tab to change | J/K to move | Backspace to exit", sortNames[state.SortColumn])),
		"",
	}

	lines = append(lines,
		info.Render(fmt.Sprintf(" %-14s %d strikes, %d landed, %s correct", "Athlete", rep.Athlete.Total, rep.Athlete.Landed, percent(rep.CorrectnessRate))),
		info.Render(fmt.Sprintf(" %-14s %d strikes, %d landed", "Opponent", rep.Opponent.Total, rep.Opponent.Landed)),
		info.Render(fmt.Sprintf(" %-14s %d hits received, %d/%d defended", "Defense", rep.HitsReceived, rep.Defense.Successful, rep.Defense.Successful+rep.Defense.Failed)),
	)
	if rep.Mode != "manual" {
		lines = append(lines, info.Render(fmt.Sprintf(" %-14s %s attack, %s defense, ratio %.2f (%s)", "Phases",
			timeutil.FormatDuration(rep.AttackTime), timeutil.FormatDuration(rep.DefenseTime), rep.AttackDefenseRatio, rep.Style)))
	}
	lines = append(lines, "")

	if len(rep.Rounds) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true).Padding(1, 2).Render("No rounds tagged"))
		return centerContent(strings.Join(lines, "\n"), width, height)
	}

	widths := []int{6, 8, 7, 8, 5, 10, 9, 11}
	headers := append(append([]string{}, sortNames...), "Style")
	var header []string
	for i, h := range headers {
		cell := fmt.Sprintf("%*s", widths[i], h)
		if i == 0 {
			cell = fmt.Sprintf("%-*s", widths[i], h)
		}
		st := styles.Header
		if i < len(sortNames) && SortColumn(i) == state.SortColumn {
			st = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Underline(true)
		}
		header = append(header, st.Render(cell))
	}
	lines = append(lines, " "+strings.Join(header, " "))
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	lines = append(lines, " "+lipgloss.NewStyle().Foreground(styles.Purple).Render(strings.Repeat("-", total)))

	visible := max(height-len(lines)-4, 3)
	if state.SelectedIndex < state.ScrollOffset {
		state.ScrollOffset = state.SelectedIndex
	} else if state.SelectedIndex >= state.ScrollOffset+visible {
		state.ScrollOffset = state.SelectedIndex - visible + 1
	}

	rounds := state.SortedRounds(rep)
	for i := state.ScrollOffset; i < len(rounds) && i < state.ScrollOffset+visible; i++ {
		r := rounds[i]
		name := fmt.Sprintf("R%d", r.Number)
		if r.Number == stats.UnknownRound {
			name = "?"
		}
		row := fmt.Sprintf("%-*s %*d %*d %*s %*d %*d %*s %*s",
			widths[0], name,
			widths[1], r.Athlete.Total,
			widths[2], r.Athlete.Landed,
			widths[3], percent(r.Athlete.CorrectnessRate),
			widths[4], r.Opponent.Total,
			widths[5], r.HitsReceived,
			widths[6], fmt.Sprintf("%d/%d", r.Defense.Successful, r.Defense.Successful+r.Defense.Failed),
			widths[7], r.Style,
		)
		st := info
		if i == state.SelectedIndex {
			st = styles.Highlight
		}
		lines = append(lines, " "+st.Render(row))
	}

	return centerContent(strings.Join(lines, "\n"), width, height)
}

func centerContent(content string, width, height int) string {
	panel := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(1, 2).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
