package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// Span is a round or phase on the timeline. Open spans run to the playhead.
type Span struct {
	Start float64
	End   float64
	Open  bool
	Label string
}

// MarkerKind colours an event marker.
type MarkerKind int

const (
	MarkerAthlete MarkerKind = iota
	MarkerOpponent
	MarkerUnassigned
	MarkerDefense
)

// Marker is one strike or defense on the timeline.
type Marker struct {
	At   float64
	Kind MarkerKind
}

// TimelineData is everything the timeline draws.
type TimelineData struct {
	TimePos  float64
	Duration float64
	Rounds   []Span
	Attacks  []Span
	Defenses []Span
	Markers  []Marker
	// Pulse alternates on every redraw tick; open spans blink with it.
	Pulse bool
}

type cell int

const (
	cellEmpty cell = iota
	cellAttack
	cellDefense
)

// Timeline renders the fight overview box: a rounds track, the phase track
// with event markers, and the playhead. It is always 6 lines tall.
func Timeline(d TimelineData, width int) string {
	if width < 20 {
		return ""
	}
	timeText := fmt.Sprintf(" %s / %s", timeutil.FormatClock(d.TimePos), timeutil.FormatClock(d.Duration))
	barW := max(width-4-lipgloss.Width(timeText)-1, 10)

	pos := func(t float64) int {
		if d.Duration <= 0 {
			return -1
		}
		return int(math.Round(float64(barW-1) * t / d.Duration))
	}
	head := max(min(pos(d.TimePos), barW-1), 0)

	// Rounds track.
	roundStyle := lipgloss.NewStyle().Foreground(styles.Round)
	openStyle := roundStyle.Bold(true)
	if d.Pulse {
		openStyle = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	}
	dim := lipgloss.NewStyle().Foreground(styles.Purple)
	rounds := make([]string, barW)
	for i := range rounds {
		rounds[i] = " "
	}
	for _, r := range d.Rounds {
		from, to := pos(r.Start), pos(r.End)
		if r.Open {
			to = head
		}
		style := roundStyle
		if r.Open {
			style = openStyle
		}
		for i := max(from, 0); i <= to && i < barW; i++ {
			rounds[i] = style.Render("▁")
		}
		if from >= 0 && from < barW {
			rounds[from] = style.Render("▕")
			label := []rune(r.Label)
			for j, ch := range label {
				if k := from + 1 + j; k < barW && k <= to {
					rounds[k] = style.Render(string(ch))
				}
			}
		}
	}

	// Phase track.
	cells := make([]cell, barW)
	paint := func(spans []Span, c cell) {
		for _, s := range spans {
			from, to := pos(s.Start), pos(s.End)
			if s.Open {
				to = head
				if d.Pulse {
					continue
				}
			}
			for i := max(from, 0); i <= to && i < barW; i++ {
				cells[i] = c
			}
		}
	}
	paint(d.Attacks, cellAttack)
	paint(d.Defenses, cellDefense)

	markers := make(map[int]MarkerKind, len(d.Markers))
	for _, m := range d.Markers {
		if p := pos(m.At); p >= 0 && p < barW {
			markers[p] = m.Kind
		}
	}

	markerColor := map[MarkerKind]lipgloss.Color{
		MarkerAthlete:    styles.Athlete,
		MarkerOpponent:   styles.Opponent,
		MarkerUnassigned: styles.Lavender,
		MarkerDefense:    styles.Green,
	}
	var bar strings.Builder
	for i := 0; i < barW; i++ {
		st := lipgloss.NewStyle()
		switch cells[i] {
		case cellAttack:
			st = st.Background(styles.Attack).Foreground(styles.DeepPurple)
		case cellDefense:
			st = st.Background(styles.Defense).Foreground(styles.DeepPurple)
		}
		ch := "─"
		switch {
		case i == head:
			ch = "╸"
			st = st.Foreground(styles.Pink).Bold(true)
		case i < head:
			ch = "━"
			if cells[i] == cellEmpty {
				st = st.Foreground(styles.BrightPurple)
			}
		default:
			if cells[i] == cellEmpty {
				st = dim
			}
		}
		if k, ok := markers[i]; ok {
			ch = "◆"
			if cells[i] == cellEmpty {
				st = lipgloss.NewStyle().Foreground(markerColor[k])
			} else {
				st = st.Foreground(markerColor[k]).Bold(true)
				if k == MarkerAthlete && cells[i] == cellAttack || k == MarkerOpponent && cells[i] == cellDefense {
					st = st.Foreground(styles.DeepPurple)
				}
			}
		}
		bar.WriteString(st.Render(ch))
	}

	indicator := strings.Repeat(" ", head) + lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).Render("▲")
	timeStyle := lipgloss.NewStyle().Foreground(styles.LightLavender).Bold(true)

	return RenderInfoBox("Timeline", []string{
		" " + strings.Join(rounds, ""),
		" " + bar.String() + " " + timeStyle.Render(timeText),
		" " + indicator,
		" " + legend(),
	}, width)
}

func legend() string {
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)
	return lipgloss.NewStyle().Foreground(styles.Attack).Render("█") + dim.Render(" attack  ") +
		lipgloss.NewStyle().Foreground(styles.Defense).Render("█") + dim.Render(" defense  ") +
		lipgloss.NewStyle().Foreground(styles.Athlete).Render("◆") + dim.Render(" athlete  ") +
		lipgloss.NewStyle().Foreground(styles.Opponent).Render("◆") + dim.Render(" opponent  ") +
		lipgloss.NewStyle().Foreground(styles.Green).Render("◆") + dim.Render(" defense")
}
