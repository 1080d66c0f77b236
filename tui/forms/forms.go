// Package forms holds the huh forms of the CLI and the TUI.
package forms

import (
	"github.com/charmbracelet/huh"
)

// NewConfirmForm asks a yes/no question bound to ok.
func NewConfirmForm(title, description string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(ok),
		),
	).WithTheme(Theme())
}

// NewConfirmQuitForm asks whether to leave the TUI with a draft that was
// never saved to the database. The draft itself stays on disk either way.
func NewConfirmQuitForm(quit *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Quit without saving?").
				Description("The draft is kept on disk; ctrl+s saves it to the database.").
				Affirmative("Quit").
				Negative("Go back").
				Value(quit),
		),
	).WithTheme(Theme())
}
