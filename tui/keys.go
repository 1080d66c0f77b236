package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/tally"
)

// handleKey routes a key press by focus, then by authoring mode.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case FocusHelp:
		m.focus = FocusMain
		return m, nil
	case FocusStats:
		return m.handleStatsKey(msg)
	case FocusCommand:
		return m.handleCommandKey(msg)
	}

	key := msg.String()
	if m.manual() {
		if handled, cmd := m.handleTallyKey(key); handled {
			return m, cmd
		}
	} else if handled, model, cmd := m.handleTimelineKey(key); handled {
		return model, cmd
	}

	switch key {
	case "ctrl+c":
		return m.quit(true)
	case "q":
		return m.quit(false)
	case " ":
		if m.player != nil {
			_ = m.player.TogglePause()
		}
	case "h", "left":
		m.seekRelative(-m.status.StepSize)
	case "l", "right":
		m.seekRelative(m.status.StepSize)
	case "<", ",":
		m.decreaseStepSize()
	case ">", ".":
		m.increaseStepSize()
	case "?":
		m.focus = FocusHelp
	case "s":
		m.statsView.Active = true
		m.statsView.SelectedIndex = 0
		m.focus = FocusStats
	case ":":
		m.command.Activate()
		m.focus = FocusCommand
	case "ctrl+s":
		return m, m.startSave()
	case "ctrl+e":
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) seekRelative(delta float64) {
	if m.player == nil {
		return
	}
	if err := m.player.SeekRelative(delta); err == nil {
		m.status.TimePos = max(m.status.TimePos+delta, 0)
	}
}

// handleTimelineKey handles the tagging keys of timeline sessions.
func (m *Model) handleTimelineKey(key string) (bool, tea.Model, tea.Cmd) {
	switch key {
	case "r":
		return true, m, m.toggleRound()
	case "a":
		return true, m, m.startAction(annotate.ActionAttack)
	case "d":
		return true, m, m.startAction(annotate.ActionDefense)
	case "x":
		return true, m, m.endAction()
	case "t":
		model, cmd := m.openStrikeForm()
		return true, model, cmd
	case "b":
		model, cmd := m.openDefenseForm()
		return true, model, cmd
	case "g":
		return true, m, m.toggleSelected()
	case "delete", "backspace":
		return true, m, m.removeSelected()
	case "j", "down":
		m.events.MoveDown()
		return true, m, nil
	case "k", "up":
		m.events.MoveUp()
		return true, m, nil
	case "enter":
		return true, m, m.seekToSelected()
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		i := int(key[0] - '1')
		if i >= len(m.tx) {
			return true, m, m.setResult("no strike type on key "+key, true)
		}
		return true, m, m.addStrike(m.tx[i], false, m.now())
	}
	return false, m, nil
}

var (
	strikeFields  = []tally.Field{tally.Landed, tally.Missed, tally.Correct}
	defenseFields = []tally.DefenseField{tally.Successful, tally.Failed}
)

// handleTallyKey handles the grid keys of manual sessions.
func (m *Model) handleTallyKey(key string) (bool, tea.Cmd) {
	rows := m.tallyRows()
	switch key {
	case "up":
		m.tally.Move(-1, 0, rows)
	case "down":
		m.tally.Move(1, 0, rows)
	case "left":
		m.tally.Move(0, -1, rows)
	case "right":
		m.tally.Move(0, 1, rows)
	case "[":
		m.tally.PrevRound()
	case "]":
		m.tally.NextRound()
	case "tab":
		m.tally.Opponent = !m.tally.Opponent
	case "+", "=":
		return true, m.bumpTally(1)
	case "-":
		return true, m.bumpTally(-1)
	case "d":
		m.command.Activate()
		for _, r := range "duration " {
			m.command.InsertChar(r)
		}
		m.focus = FocusCommand
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) tallyActor() annotate.Owner {
	if m.tally.Opponent {
		return annotate.OwnerOpponent
	}
	return annotate.OwnerAthlete
}

// bumpTally adds delta to the counter under the cursor.
func (m *Model) bumpTally(delta int) tea.Cmd {
	rows := m.tallyRows()
	if len(rows) == 0 {
		return nil
	}
	m.tally.Move(0, 0, rows)
	round, actor := m.tally.Round, m.tallyActor()

	var ok bool
	if i := m.tally.Row; i < len(m.tallyKeys) {
		key, field := m.tallyKeys[i], strikeFields[m.tally.Col]
		if delta > 0 {
			ok = m.sess.Tally.Increment(round, actor, key, field)
		} else {
			ok = m.sess.Tally.Decrement(round, actor, key, field)
		}
		if !ok && delta > 0 && field == tally.Correct {
			return m.setResult("correct cannot exceed landed + missed", true)
		}
	} else {
		dt, field := annotate.DefenseTypes[i-len(m.tallyKeys)], defenseFields[m.tally.Col]
		if delta > 0 {
			ok = m.sess.Tally.IncrementDefense(round, actor, dt, field)
		} else {
			ok = m.sess.Tally.DecrementDefense(round, actor, dt, field)
		}
	}
	if ok {
		m.changed("")
	}
	return nil
}

// handleStatsKey handles keys while the report is shown.
func (m *Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit(true)
	case "backspace", "esc", "s", "q":
		m.statsView.Active = false
		m.focus = FocusMain
	case "tab":
		m.statsView.NextSortColumn()
	case "j", "down":
		m.statsView.MoveDown(len(m.report().Rounds))
	case "k", "up":
		m.statsView.MoveUp()
	}
	return m, nil
}

// handleCommandKey edits the ':' prompt and runs it on enter.
func (m *Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.command.Clear()
		m.focus = FocusMain
	case tea.KeyEnter:
		m.focus = FocusMain
		line := m.command.Submit()
		if line == "" {
			return m, nil
		}
		return m.runCommand(line)
	case tea.KeyBackspace:
		m.command.Backspace()
	case tea.KeyDelete:
		m.command.Delete()
	case tea.KeyLeft:
		m.command.MoveCursorLeft()
	case tea.KeyRight:
		m.command.MoveCursorRight()
	case tea.KeyUp:
		m.command.HistoryPrev()
	case tea.KeyDown:
		m.command.HistoryNext()
	case tea.KeySpace:
		m.command.InsertChar(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.command.InsertChar(r)
		}
	}
	return m, nil
}
