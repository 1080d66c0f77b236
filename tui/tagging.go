package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/stats"
	"github.com/user/tagging-fight-cli/tui/components"
)

// toggleRound ends the open round or starts the next one.
func (m *Model) toggleRound() tea.Cmd {
	iv, at := m.sess.Timeline.Intervals, m.now()
	if r, ok := iv.ActiveRound(); ok {
		iv.EndRound(at)
		text := fmt.Sprintf("Round %d ended", r.Number)
		m.changed(text)
		return m.setResult(text, false)
	}
	r := iv.StartRound(at)
	text := fmt.Sprintf("Round %d started", r.Number)
	m.changed(text)
	return m.setResult(text, false)
}

// startAction opens an attack or defense phase, closing the open one.
func (m *Model) startAction(kind annotate.ActionKind) tea.Cmd {
	m.sess.Timeline.Intervals.StartAction(kind, m.now())
	text := strings.ToUpper(string(kind[:1])) + string(kind[1:]) + " phase"
	m.changed(text)
	return m.setResult(text+" started", false)
}

func (m *Model) endAction() tea.Cmd {
	if !m.sess.Timeline.Intervals.EndAction(m.now()) {
		return m.setResult("no phase open", true)
	}
	m.changed("Phase ended")
	return m.setResult("phase ended", false)
}

// addStrike records a strike at `at`; the open phases decide owner and round.
func (m *Model) addStrike(t annotate.StrikeType, landed bool, at float64) tea.Cmd {
	tl := m.sess.Timeline
	s := tl.AddStrike(t, at, max(m.now(), at))
	if landed {
		s, _ = tl.Events.ToggleHit(s.ID)
	}
	text := strikeText(s)
	m.changed(text)
	m.events.Select(s.ID)
	return m.setResult(text, false)
}

func (m *Model) addDefense(defenseType string, successful bool, at float64) tea.Cmd {
	d := m.sess.Timeline.AddDefense(defenseType, successful, at, max(m.now(), at))
	text := defenseText(d)
	m.changed(text)
	m.events.Select(d.ID)
	if !d.InWindow {
		return m.setResult(text+" (outside any defense phase)", false)
	}
	return m.setResult(text, false)
}

// toggleSelected flips hit on a strike or success on a defense.
func (m *Model) toggleSelected() tea.Cmd {
	sel := m.events.Selected()
	if sel == nil {
		return m.setResult("nothing selected", true)
	}
	ev := m.sess.Timeline.Events
	var text string
	switch sel.Kind {
	case components.EventStrike:
		s, ok := ev.ToggleHit(sel.ID)
		if !ok {
			return m.setResult("strike no longer exists", true)
		}
		text = strikeText(s)
	case components.EventDefense:
		d, ok := ev.ToggleDefense(sel.ID)
		if !ok {
			return m.setResult("defense no longer exists", true)
		}
		text = defenseText(d)
	}
	m.changed(text)
	return m.setResult(text, false)
}

func (m *Model) removeSelected() tea.Cmd {
	sel := m.events.Selected()
	if sel == nil {
		return m.setResult("nothing selected", true)
	}
	ev := m.sess.Timeline.Events
	removed := false
	switch sel.Kind {
	case components.EventStrike:
		removed = ev.RemoveStrike(sel.ID)
	case components.EventDefense:
		removed = ev.RemoveDefense(sel.ID)
	}
	if !removed {
		return m.setResult("event no longer exists", true)
	}
	text := "removed " + sel.Label + " @ " + timeutil.FormatClock(sel.Timestamp)
	m.changed("")
	return m.setResult(text, false)
}

func (m *Model) seekToSelected() tea.Cmd {
	sel := m.events.Selected()
	if sel == nil || m.player == nil {
		return nil
	}
	if err := m.player.Seek(sel.Timestamp); err != nil {
		return m.setResult("seek failed: "+err.Error(), true)
	}
	m.status.TimePos = sel.Timestamp
	return nil
}

func strikeText(s annotate.StrikeEvent) string {
	outcome := "missed"
	if s.HitTarget {
		outcome = "landed"
	}
	return fmt.Sprintf("%s %s (%s)", s.Type.Label(), outcome, s.Owner)
}

func defenseText(d annotate.DefenseEvent) string {
	outcome := "failed"
	if d.Successful {
		outcome = "successful"
	}
	return fmt.Sprintf("%s %s", d.DefenseType, outcome)
}

// roundNumbers maps round ids to their current numbers.
func roundNumbers(iv *annotate.Intervals) map[string]int {
	numbers := make(map[string]int)
	for _, r := range iv.Rounds() {
		numbers[r.ID] = r.Number
	}
	return numbers
}

func roundOf(ctx *annotate.RoundContext, numbers map[string]int) int {
	if ctx == nil {
		return 0
	}
	return numbers[ctx.RoundID]
}

// refreshEvents rebuilds the event list from the timeline.
func (m *Model) refreshEvents() {
	if m.manual() || m.sess.Timeline == nil {
		m.events.SetItems(nil)
		return
	}
	tl := m.sess.Timeline
	numbers := roundNumbers(tl.Intervals)
	var items []components.EventItem
	for _, s := range tl.Events.Strikes() {
		items = append(items, components.EventItem{
			Kind:      components.EventStrike,
			ID:        s.ID,
			Timestamp: s.Timestamp,
			Label:     s.Type.Label(),
			Round:     roundOf(s.Round, numbers),
			Owner:     string(s.Owner),
			OK:        s.HitTarget,
		})
	}
	for _, d := range tl.Events.Defenses() {
		items = append(items, components.EventItem{
			Kind:      components.EventDefense,
			ID:        d.ID,
			Timestamp: d.Timestamp,
			Label:     d.DefenseType,
			Round:     roundOf(d.Round, numbers),
			OK:        d.Successful,
			InWindow:  d.InWindow,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp < items[j].Timestamp })
	m.events.SetItems(items)
}

// report aggregates the session at the playhead.
func (m *Model) report() stats.Report {
	return m.sess.Report(m.now(), m.bucket)
}

// tallyRows builds the manual grid for the current round and actor.
func (m *Model) tallyRows() []components.TallyRow {
	round, actor := m.tally.Round, m.tallyActor()
	rows := make([]components.TallyRow, 0, len(m.tallyKeys)+len(annotate.DefenseTypes))
	for _, k := range m.tallyKeys {
		c := m.sess.Tally.Get(round, actor, k)
		rows = append(rows, components.TallyRow{Label: k.String(), Cells: []int{c.Landed, c.Missed, c.Correct}})
	}
	for _, d := range annotate.DefenseTypes {
		c := m.sess.Tally.GetDefense(round, actor, d)
		rows = append(rows, components.TallyRow{Label: d, Defense: true, Cells: []int{c.Successful, c.Failed}})
	}
	return rows
}

// phaseState describes what is open at the playhead.
func (m *Model) phaseState() components.PhaseState {
	p := components.PhaseState{Now: m.now(), Manual: m.manual()}
	if p.Manual {
		return p
	}
	iv := m.sess.Timeline.Intervals
	if r, ok := iv.ActiveRound(); ok {
		p.Round, p.RoundStart, p.RoundOpen = r.Number, r.Start, true
	}
	if a, ok := iv.ActiveAction(); ok {
		p.Action, p.ActionStart = string(a.Kind), a.Start
	}
	return p
}

// timelineData projects the session onto the timeline bar.
func (m *Model) timelineData() components.TimelineData {
	d := components.TimelineData{
		TimePos:  m.status.TimePos,
		Duration: m.status.Duration,
		Pulse:    m.pulse,
	}
	if d.Duration <= 0 {
		d.Duration = m.sess.EffectiveDuration()
	}
	if m.manual() {
		return d
	}
	now := m.now()
	tl := m.sess.Timeline
	for _, r := range tl.Intervals.Rounds() {
		d.Rounds = append(d.Rounds, components.Span{
			Start: r.Start, End: r.EffectiveEnd(now), Open: r.Open(), Label: fmt.Sprintf("R%d", r.Number),
		})
	}
	for _, a := range tl.Intervals.Actions() {
		span := components.Span{Start: a.Start, End: a.EffectiveEnd(now), Open: a.Open()}
		if a.Kind == annotate.ActionDefense {
			d.Defenses = append(d.Defenses, span)
		} else {
			d.Attacks = append(d.Attacks, span)
		}
	}
	for _, s := range tl.Events.Strikes() {
		kind := components.MarkerUnassigned
		switch s.Owner {
		case annotate.OwnerAthlete:
			kind = components.MarkerAthlete
		case annotate.OwnerOpponent:
			kind = components.MarkerOpponent
		}
		d.Markers = append(d.Markers, components.Marker{At: s.Timestamp, Kind: kind})
	}
	for _, e := range tl.Events.Defenses() {
		d.Markers = append(d.Markers, components.Marker{At: e.Timestamp, Kind: components.MarkerDefense})
	}
	return d
}
