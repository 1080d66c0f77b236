package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/tagging-fight-cli/tui/styles"
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

// Theme returns the huh theme in the TUI palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	f := &t.Focused
	f.Base = f.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.BrightPurple).
		PaddingLeft(1)
	f.Title = fg(styles.Pink).Bold(true)
	f.NoteTitle = fg(styles.Cyan).Bold(true)
	f.Description = fg(styles.Lavender)
	f.ErrorIndicator = fg(styles.Pink).Bold(true)
	f.ErrorMessage = fg(styles.Pink)
	f.SelectSelector = fg(styles.Cyan).SetString("▸ ")
	f.MultiSelectSelector = fg(styles.Cyan).SetString("▸ ")
	f.Option = fg(styles.LightLavender)
	f.SelectedOption = fg(styles.Cyan)
	f.UnselectedOption = fg(styles.Lavender)
	f.SelectedPrefix = fg(styles.Cyan).SetString("[✓] ")
	f.UnselectedPrefix = fg(styles.Lavender).SetString("[ ] ")
	f.NextIndicator = fg(styles.Lavender)
	f.PrevIndicator = fg(styles.Lavender)
	f.TextInput.Cursor = fg(styles.Cyan)
	f.TextInput.Prompt = fg(styles.Cyan)
	f.TextInput.Placeholder = fg(styles.Purple)
	f.TextInput.Text = fg(styles.LightLavender)
	f.FocusedButton = lipgloss.NewStyle().
		Background(styles.BrightPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Padding(0, 1)
	f.BlurredButton = lipgloss.NewStyle().
		Background(styles.Purple).
		Foreground(styles.Lavender).
		Padding(0, 1)
	f.Next = f.FocusedButton
	f.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(0, 1)

	// Blurred fields are the focused ones one step dimmer.
	b := &t.Blurred
	*b = *f
	b.Base = b.Base.BorderStyle(lipgloss.HiddenBorder())
	b.Title = fg(styles.Lavender)
	b.NoteTitle = fg(styles.Lavender)
	b.Description = fg(styles.Purple)
	b.ErrorIndicator = fg(styles.Pink)
	b.SelectSelector = lipgloss.NewStyle().SetString("  ")
	b.MultiSelectSelector = lipgloss.NewStyle().SetString("  ")
	b.Option = fg(styles.Lavender)
	b.SelectedOption = fg(styles.Lavender)
	b.UnselectedOption = fg(styles.Purple)
	b.SelectedPrefix = fg(styles.Lavender).SetString("[✓] ")
	b.UnselectedPrefix = fg(styles.Purple).SetString("[ ] ")
	b.TextInput.Cursor = fg(styles.Purple)
	b.TextInput.Prompt = fg(styles.Purple)
	b.TextInput.Text = fg(styles.Lavender)
	b.FocusedButton = f.BlurredButton
	b.BlurredButton = lipgloss.NewStyle().
		Background(styles.DeepPurple).
		Foreground(styles.Purple).
		Padding(0, 1)
	b.Next = b.FocusedButton
	b.Card = f.Card.BorderForeground(styles.DeepPurple)

	return t
}
