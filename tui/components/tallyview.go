package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// TallyRow is one line of the manual grid: a strike key with landed, missed
// and correct, or a defense type with successful and failed.
type TallyRow struct {
	Label   string
	Defense bool
	Cells   []int
}

// Columns is how many counters the row has.
func (r TallyRow) Columns() int {
	if r.Defense {
		return 2
	}
	return 3
}

// TallyState is the cursor of the manual grid.
type TallyState struct {
	Round    int
	Opponent bool
	Row      int
	Col      int
}

// Actor names the side being counted.
func (s TallyState) Actor() string {
	if s.Opponent {
		return "opponent"
	}
	return "athlete"
}

// Move shifts the cursor within rows, clamping the column to the row width.
func (s *TallyState) Move(dRow, dCol int, rows []TallyRow) {
	if len(rows) == 0 {
		s.Row, s.Col = 0, 0
		return
	}
	s.Row = max(min(s.Row+dRow, len(rows)-1), 0)
	s.Col = max(min(s.Col+dCol, rows[s.Row].Columns()-1), 0)
}

// NextRound and PrevRound walk rounds from 1 upward.
func (s *TallyState) NextRound() { s.Round++ }

func (s *TallyState) PrevRound() {
	if s.Round > 1 {
		s.Round--
	}
}

// TallyView renders the grid for the current round and actor.
func TallyView(state TallyState, rows []TallyRow, roundDuration float64, width, height int) string {
	cellW := 11
	labelW := max(min(width-2-cellW*3-4, 24), 8)
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)

	actorColor := styles.Athlete
	if state.Opponent {
		actorColor = styles.Opponent
	}
	length := "not set"
	if roundDuration > 0 {
		length = timeutil.FormatClock(roundDuration)
	}
	lines := []string{
		lipgloss.NewStyle().Foreground(styles.Round).Bold(true).Render(fmt.Sprintf(" Round %d", state.Round)) +
			dim.Render("  counting ") +
			lipgloss.NewStyle().Foreground(actorColor).Bold(true).Render(state.Actor()) +
			dim.Render("  length "+length),
		"",
	}

	header := func(cols ...string) string {
		s := fmt.Sprintf(" %-*s", labelW, "")
		for _, c := range cols {
			s += fmt.Sprintf(" %*s", cellW, c)
		}
		return styles.Header.Render(s)
	}

	inDefense, cursorLine := false, 0
	lines = append(lines, header("landed", "missed", "correct"))
	for i, r := range rows {
		if r.Defense && !inDefense {
			inDefense = true
			lines = append(lines, "", header("successful", "failed"))
		}
		if i == state.Row {
			cursorLine = len(lines)
		}
		var b strings.Builder
		b.WriteString(text.Render(fmt.Sprintf(" %-*s", labelW, r.Label)))
		for c, v := range r.Cells {
			cell := fmt.Sprintf("%*d", cellW, v)
			b.WriteString(" ")
			switch {
			case i == state.Row && c == state.Col:
				b.WriteString(styles.Highlight.Render(cell))
			case v == 0:
				b.WriteString(lipgloss.NewStyle().Foreground(styles.Purple).Render(cell))
			default:
				b.WriteString(text.Render(cell))
			}
		}
		lines = append(lines, b.String())
	}
	if height > 0 && len(lines) > height {
		// Keep the cursor row on screen.
		start := max(min(cursorLine-height/2, len(lines)-height), 0)
		lines = lines[start : start+height]
	}
	return strings.Join(lines, "\n")
}
