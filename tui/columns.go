package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/tui/components"
	"github.com/user/tagging-fight-cli/tui/layout"
	"github.com/user/tagging-fight-cli/tui/styles"
)

// timelineHeight is the height of the timeline box under the columns.
const timelineHeight = 6

// View renders the current state of the model as a string.
func (m *Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return ""
	}

	switch m.focus {
	case FocusHelp:
		return components.HelpOverlay(m.manual(), m.width, m.height)
	case FocusStats:
		return components.StatsView(m.statsView, m.report(), m.sess.Label(), m.width, m.height)
	}

	statusBar := components.StatusBar(m.status, m.width)
	commandLine := components.CommandInput(m.command, m.width)

	if m.focus == FocusForm && m.form != nil {
		form := lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		return statusBar + "\n" + form + "\n" + commandLine
	}

	if m.width < layout.MinTerminalWidth {
		return components.RenderMiniPlayer(m.status, m.phaseState(), m.width) + "\n" + commandLine
	}

	colHeight := max(m.height-timelineHeight-2, 5)
	widths := layout.ComputeWidths(m.width)
	cols := []string{
		m.renderSideColumn(widths.Side, colHeight),
		m.renderMainColumn(widths.Events, colHeight),
	}
	if widths.Stats > 0 {
		cols = append(cols, layout.Container{Width: widths.Stats, Height: colHeight}.Render(
			components.StatsPanel(m.report(), widths.Stats, colHeight)))
	}
	columns := layout.JoinColumns(cols, widths.List(), colHeight)

	return statusBar + "\n" + columns + "\n" + components.Timeline(m.timelineData(), m.width) + "\n" + commandLine
}

// renderSideColumn shows the open phases, the selected event, export
// progress and the key bindings.
func (m *Model) renderSideColumn(width, height int) string {
	var boxes []string
	boxes = append(boxes, components.PhaseBox(m.phaseState(), width))

	if box := m.selectedBox(width); box != "" {
		boxes = append(boxes, box)
	}
	if m.export.Active {
		boxes = append(boxes, components.ExportProgress(m.export, width))
	}
	for _, g := range components.ControlGroups(m.manual()) {
		boxes = append(boxes, components.RenderControlBox(g, width))
	}
	return layout.Container{Width: width, Height: height}.Render(strings.Join(boxes, "\n"))
}

func (m *Model) selectedBox(width int) string {
	sel := m.events.Selected()
	if sel == nil || m.manual() {
		return ""
	}
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)

	kind, outcome := "Strike", "missed"
	if sel.OK {
		outcome = "landed"
	}
	if sel.Kind == components.EventDefense {
		kind, outcome = "Defense", "failed"
		if sel.OK {
			outcome = "successful"
		}
	}
	lines := []string{
		text.Render(layout.Truncate(fmt.Sprintf(" %s: %s", kind, sel.Label), width-2)),
		dim.Render(fmt.Sprintf(" @ %s  %s", timeutil.FormatTime(sel.Timestamp), outcome)),
	}
	if sel.Round > 0 {
		lines = append(lines, dim.Render(fmt.Sprintf(" Round %d", sel.Round)))
	} else {
		lines = append(lines, dim.Render(" Outside every round"))
	}
	if sel.Kind == components.EventStrike {
		lines = append(lines, dim.Render(" By "+sel.Owner))
	}
	return components.RenderInfoBox("Selected", lines, width)
}

// renderMainColumn is the event list, or the tally grid in manual sessions.
func (m *Model) renderMainColumn(width, height int) string {
	inner := max(height-2, 3)
	if m.manual() {
		grid := components.TallyView(m.tally, m.tallyRows(), m.sess.Tally.RoundDuration(m.tally.Round), width-2, inner)
		box := components.RenderInfoBox("Tally", layout.NormalizeLines(strings.Split(grid, "\n"), inner), width)
		return layout.Container{Width: width, Height: height}.Render(box)
	}
	list := components.EventList(m.events, width-2, inner)
	title := fmt.Sprintf("Events (%d)", len(m.events.Items))
	box := components.RenderInfoBox(title, strings.Split(list, "\n"), width)
	return layout.Container{Width: width, Height: height}.Render(box)
}
