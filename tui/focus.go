package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/user/tagging-fight-cli/tui/forms"
)

// Focus is what currently receives key presses.
type Focus int

const (
	// FocusMain is the tagging screen.
	FocusMain Focus = iota
	// FocusCommand is the ':' prompt.
	FocusCommand
	// FocusForm is an open huh form.
	FocusForm
	// FocusStats is the full-screen report.
	FocusStats
	// FocusHelp is the keybinding overlay.
	FocusHelp
)

type formKind int

const (
	formStrike formKind = iota
	formDefense
	formQuit
)

// openForm shows f and pauses the video so the moment being tagged stays on screen.
func (m *Model) openForm(kind formKind, f *huh.Form) (tea.Model, tea.Cmd) {
	if m.player != nil && m.player.IsConnected() && kind != formQuit {
		_ = m.player.Pause()
	}
	m.form = f.WithWidth(min(max(m.width-4, 40), 72))
	m.formKind = kind
	m.formAt = m.now()
	m.focus = FocusForm
	return m, m.form.Init()
}

func (m *Model) openStrikeForm() (tea.Model, tea.Cmd) {
	m.strikeRes = forms.StrikeFormResult{}
	return m.openForm(formStrike, forms.NewStrikeForm(m.now(), m.tx, &m.strikeRes))
}

func (m *Model) openDefenseForm() (tea.Model, tea.Cmd) {
	m.defenseRes = forms.DefenseFormResult{Successful: true}
	return m.openForm(formDefense, forms.NewDefenseForm(m.now(), &m.defenseRes))
}

func (m *Model) openQuitForm() (tea.Model, tea.Cmd) {
	m.quitOK = false
	return m.openForm(formQuit, forms.NewConfirmQuitForm(&m.quitOK))
}

func (m *Model) closeForm() {
	m.form = nil
	m.focus = FocusMain
}

// updateForm feeds msg to the open form and acts on it once it completes.
// Esc abandons the form.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeForm()
		return m, nil
	}
	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	case huh.StateCompleted:
		kind, at := m.formKind, m.formAt
		m.closeForm()
		return m.submitForm(kind, at)
	}
	return m, cmd
}

func (m *Model) submitForm(kind formKind, at float64) (tea.Model, tea.Cmd) {
	switch kind {
	case formStrike:
		t, ok := m.tx.Lookup(m.strikeRes.TypeID)
		if !ok {
			return m, m.setResult("unknown strike type "+m.strikeRes.TypeID, true)
		}
		return m, m.addStrike(t, m.strikeRes.Landed, at)
	case formDefense:
		return m, m.addDefense(m.defenseRes.Type, m.defenseRes.Successful, at)
	case formQuit:
		if m.quitOK {
			return m.quit(true)
		}
	}
	return m, nil
}
