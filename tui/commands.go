package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

// runCommand executes a ':' command line.
func (m *Model) runCommand(line string) (tea.Model, tea.Cmd) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return m, nil
	}
	name, args := strings.ToLower(args[0]), args[1:]

	switch name {
	case "q", "quit":
		return m.quit(false)
	case "q!", "quit!":
		return m.quit(true)
	case "w", "save":
		return m, m.startSave()
	case "export", "clips":
		return m, m.startExport()
	case "stats":
		m.statsView.Active = true
		m.focus = FocusStats
		return m, nil
	case "help":
		m.focus = FocusHelp
		return m, nil
	case "round", "attack", "defense", "end", "strike", "defend":
		if m.manual() {
			return m, m.setResult("manual session: tag with the tally grid", true)
		}
		return m, m.tagCommand(name, args)
	}

	msg, err := m.executeCommand(name, args)
	if err != nil {
		return m, m.setResult(err.Error(), true)
	}
	return m, m.setResult(msg, false)
}

func (m *Model) executeCommand(name string, args []string) (string, error) {
	switch name {
	case "seek", "goto", "g":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: seek <time>")
		}
		secs, err := timeutil.ParseTimeToSeconds(args[0])
		if err != nil {
			return "", err
		}
		if m.player == nil {
			return "", fmt.Errorf("no player")
		}
		if err := m.player.Seek(secs); err != nil {
			return "", fmt.Errorf("seek failed: %w", err)
		}
		m.status.TimePos = secs
		return "seek " + timeutil.FormatClock(secs), nil

	case "step":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: step <seconds>")
		}
		step, err := strconv.ParseFloat(args[0], 64)
		if err != nil || step <= 0 {
			return "", fmt.Errorf("invalid step %q", args[0])
		}
		m.status.StepSize = step
		return "step " + timeutil.FormatDuration(step), nil

	case "duration":
		return m.setDurationCommand(args)

	case "owner":
		if m.manual() {
			return "", fmt.Errorf("manual sessions have no owner policy")
		}
		if len(args) != 1 {
			return "", fmt.Errorf("usage: owner athlete|opponent|unassigned")
		}
		o, err := annotate.ParseOwner(args[0])
		if err != nil {
			return "", err
		}
		m.sess.Timeline.DefaultOwner = o
		m.changed("")
		return "strikes outside phases go to " + string(o), nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

// tagCommand runs the tagging commands of timeline sessions.
func (m *Model) tagCommand(name string, args []string) tea.Cmd {
	switch name {
	case "round":
		return m.toggleRound()
	case "attack":
		return m.startAction(annotate.ActionAttack)
	case "defense":
		return m.startAction(annotate.ActionDefense)
	case "end":
		return m.endAction()
	case "strike":
		if len(args) < 1 {
			return m.setResult("usage: strike <type> [landed]", true)
		}
		t, ok := m.tx.Lookup(args[0])
		if !ok {
			return m.setResult(fmt.Sprintf("unknown strike type %q", args[0]), true)
		}
		landed := len(args) > 1 && (args[1] == "landed" || args[1] == "hit")
		return m.addStrike(t, landed, m.now())
	case "defend":
		if len(args) < 1 {
			return m.setResult("usage: defend <type> [failed]", true)
		}
		if !slices.Contains(annotate.DefenseTypes, args[0]) {
			return m.setResult(fmt.Sprintf("unknown defense type %q: must be one of %s", args[0], strings.Join(annotate.DefenseTypes, ", ")), true)
		}
		return m.addDefense(args[0], !(len(args) > 1 && args[1] == "failed"), m.now())
	}
	return nil
}

// setDurationCommand sets the round length in manual sessions and the fight
// length in timeline sessions.
func (m *Model) setDurationCommand(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: duration <time>")
	}
	secs, err := timeutil.ParseTimeToSeconds(args[0])
	if err != nil {
		return "", err
	}
	if m.manual() {
		if !m.sess.Tally.SetRoundDuration(m.tally.Round, secs) {
			return "", fmt.Errorf("invalid round length %s", args[0])
		}
		m.changed("")
		return fmt.Sprintf("round %d lasts %s", m.tally.Round, timeutil.FormatClock(secs)), nil
	}
	if m.sess.SetDuration(secs) {
		m.status.Duration = secs
		m.changed("")
	}
	return "fight length " + timeutil.FormatClock(secs), nil
}
