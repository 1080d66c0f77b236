package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// EventKind tells strikes from defenses in the event list.
type EventKind int

const (
	EventStrike EventKind = iota
	EventDefense
)

// EventItem is one row of the event list.
type EventItem struct {
	Kind      EventKind
	ID        string
	Timestamp float64
	Label     string
	// Round is the current round number, 0 when outside every round.
	Round int
	// Owner is athlete, opponent or unassigned for strikes.
	Owner string
	// OK is a landed strike or a successful defense.
	OK bool
	// InWindow marks a defense tagged inside a defense phase.
	InWindow bool
}

// EventListState is the event table with its selection.
type EventListState struct {
	Items         []EventItem
	SelectedIndex int
	ScrollOffset  int
}

// SetItems replaces the rows and keeps the selection on the same event when
// it still exists.
func (s *EventListState) SetItems(items []EventItem) {
	var keep string
	if sel := s.Selected(); sel != nil {
		keep = sel.ID
	}
	s.Items = items
	for i, it := range items {
		if it.ID == keep {
			s.SelectedIndex = i
			return
		}
	}
	s.SelectedIndex = min(s.SelectedIndex, max(len(items)-1, 0))
}

// Select moves the selection onto the event with the given id.
func (s *EventListState) Select(id string) {
	for i, it := range s.Items {
		if it.ID == id {
			s.SelectedIndex = i
			return
		}
	}
}

func (s *EventListState) MoveUp() {
	if s.SelectedIndex > 0 {
		s.SelectedIndex--
	}
}

func (s *EventListState) MoveDown() {
	if s.SelectedIndex < len(s.Items)-1 {
		s.SelectedIndex++
	}
}

// Selected returns the selected event, nil when the list is empty.
func (s *EventListState) Selected() *EventItem {
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Items) {
		return nil
	}
	return &s.Items[s.SelectedIndex]
}

// EventList renders rows as a table of exactly height lines, header included.
func EventList(state EventListState, width, height int) string {
	rows := max(height-1, 1)
	timeW, roundW, whoW := 9, 3, 9
	labelW := max(width-timeW-roundW-whoW-8, 8)

	header := lipgloss.NewStyle().Foreground(styles.Lavender).Bold(true).Underline(true)
	lines := []string{header.Render(fmt.Sprintf(" %-*s %-*s %-*s %-*s", timeW, "Time", roundW, "Rd", whoW, "Who", labelW, "Event"))}

	if len(state.Items) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Purple).Italic(true).Render(" No strikes or defenses tagged"))
		for len(lines) < rows+1 {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	if state.SelectedIndex < state.ScrollOffset {
		state.ScrollOffset = state.SelectedIndex
	} else if state.SelectedIndex >= state.ScrollOffset+rows {
		state.ScrollOffset = state.SelectedIndex - rows + 1
	}
	state.ScrollOffset = max(min(state.ScrollOffset, len(state.Items)-rows), 0)

	for row := 0; row < rows; row++ {
		i := state.ScrollOffset + row
		if i >= len(state.Items) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, eventRow(state.Items[i], i == state.SelectedIndex, timeW, roundW, whoW, labelW, width))
	}
	return strings.Join(lines, "\n")
}

func eventRow(it EventItem, selected bool, timeW, roundW, whoW, labelW, width int) string {
	round := "-"
	if it.Round > 0 {
		round = fmt.Sprint(it.Round)
	}
	who, whoColor := it.Owner, styles.Lavender
	switch {
	case it.Kind == EventDefense:
		who, whoColor = "defense", styles.Green
	case it.Owner == "athlete":
		whoColor = styles.Athlete
	case it.Owner == "opponent":
		whoColor = styles.Opponent
	}

	mark, markColor := "✗", styles.Red
	if it.OK {
		mark, markColor = "✓", styles.Green
	}
	label := it.Label
	if it.Kind == EventDefense && !it.InWindow {
		label += " (out of phase)"
	}
	label = ansi.Truncate(label, labelW-2, "…")

	if selected {
		content := fmt.Sprintf(" %-*s %-*s %-*s %s %-*s", timeW, timeutil.FormatClock(it.Timestamp), roundW, round, whoW, who, mark, labelW-2, label)
		return styles.Highlight.Width(width).Render(content)
	}
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	return " " + text.Render(fmt.Sprintf("%-*s %-*s ", timeW, timeutil.FormatClock(it.Timestamp), roundW, round)) +
		lipgloss.NewStyle().Foreground(whoColor).Render(fmt.Sprintf("%-*s", whoW, who)) + " " +
		lipgloss.NewStyle().Foreground(markColor).Render(mark) + " " +
		text.Render(label)
}
