package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/tagging-fight-cli/stats"
)

func typeLine(s *CommandInputState, text string) {
	s.Activate()
	for _, r := range text {
		s.InsertChar(r)
	}
}

func TestCommandInputEditing(t *testing.T) {
	var s CommandInputState
	typeLine(&s, "sek 10")
	s.CursorPos = 2
	s.InsertChar('e')
	assert.Equal(t, "seek 10", string(s.Input))

	s.MoveCursorLeft()
	s.Backspace()
	assert.Equal(t, "sek 10", string(s.Input))
	assert.Equal(t, 1, s.CursorPos)

	s.Delete()
	assert.Equal(t, "sk 10", string(s.Input))
}

func TestCommandInputHistory(t *testing.T) {
	var s CommandInputState
	typeLine(&s, "stats")
	assert.Equal(t, "stats", s.Submit())
	assert.False(t, s.Active)

	typeLine(&s, "seek 1:00")
	s.Submit()
	typeLine(&s, "seek 1:00")
	s.Submit()

	s.Activate()
	s.HistoryPrev()
	assert.Equal(t, "seek 1:00", string(s.Input))
	s.HistoryPrev()
	assert.Equal(t, "stats", string(s.Input), "repeats are stored once")
	s.HistoryPrev()
	assert.Equal(t, "stats", string(s.Input))

	s.HistoryNext()
	s.HistoryNext()
	assert.Empty(t, s.Input)
	assert.Equal(t, 0, s.CursorPos)
}

func TestEventListKeepsSelection(t *testing.T) {
	var s EventListState
	s.SetItems([]EventItem{{ID: "a", Timestamp: 1}, {ID: "b", Timestamp: 2}})
	s.Select("b")
	require.NotNil(t, s.Selected())

	s.SetItems([]EventItem{{ID: "z", Timestamp: 0.5}, {ID: "a", Timestamp: 1}, {ID: "b", Timestamp: 2}})
	assert.Equal(t, "b", s.Selected().ID)

	s.SetItems([]EventItem{{ID: "z", Timestamp: 0.5}})
	assert.Equal(t, "z", s.Selected().ID)

	s.SetItems(nil)
	assert.Nil(t, s.Selected())
}

func TestTallyCursor(t *testing.T) {
	rows := []TallyRow{
		{Label: "jab", Cells: []int{0, 0, 0}},
		{Label: "block", Defense: true, Cells: []int{0, 0}},
	}
	s := TallyState{Round: 1}
	s.Move(0, 5, rows)
	assert.Equal(t, 2, s.Col)

	s.Move(1, 0, rows)
	assert.Equal(t, 1, s.Row)
	s.Move(0, 0, rows)
	assert.Equal(t, 1, s.Col, "defense rows have two counters")

	s.Move(-9, -9, rows)
	assert.Equal(t, 0, s.Row)
	assert.Equal(t, 0, s.Col)

	s.PrevRound()
	assert.Equal(t, 1, s.Round)
	s.NextRound()
	assert.Equal(t, 2, s.Round)
	s.Opponent = true
	assert.Equal(t, "opponent", s.Actor())
}

func TestSortedRounds(t *testing.T) {
	rep := stats.Report{Rounds: []stats.RoundStats{
		{Number: 1, Athlete: stats.ActorTotals{Total: 4}},
		{Number: 2, Athlete: stats.ActorTotals{Total: 9}},
		{Number: 3, Athlete: stats.ActorTotals{Total: 4}},
	}}
	var s StatsViewState
	numbers := func() []int {
		var out []int
		for _, r := range s.SortedRounds(rep) {
			out = append(out, r.Number)
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3}, numbers())

	s.NextSortColumn()
	assert.Equal(t, SortByStrikes, s.SortColumn)
	assert.Equal(t, []int{2, 1, 3}, numbers())
	assert.Equal(t, 1, rep.Rounds[0].Number, "the report is not reordered")

	for range sortNames[1:] {
		s.NextSortColumn()
	}
	assert.Equal(t, SortByRound, s.SortColumn)
}
