package forms

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

// StrikeFormResult is a strike picked from the taxonomy.
type StrikeFormResult struct {
	TypeID string
	Landed bool
}

// NewStrikeForm asks for the strike type and whether it landed. The owner and
// round are not asked; they come from the phases open at timestamp.
func NewStrikeForm(timestamp float64, tx annotate.Taxonomy, result *StrikeFormResult) *huh.Form {
	opts := make([]huh.Option[string], 0, len(tx))
	for _, t := range tx {
		label := t.Label()
		if t.Side != annotate.SideNone && t.Name != "" {
			label = fmt.Sprintf("%s (%s %s)", t.Name, t.Side, t.Category)
		}
		opts = append(opts, huh.NewOption(label, t.ID))
	}
	if result.TypeID == "" && len(tx) > 0 {
		result.TypeID = tx[0].ID
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Strike @ %s", timeutil.FormatClock(timestamp))),

			huh.NewSelect[string]().
				Title("Type").
				Options(opts...).
				Height(10).
				Value(&result.TypeID),

			huh.NewConfirm().
				Title("Landed").
				Affirmative("Landed").
				Negative("Missed").
				Value(&result.Landed),
		),
	).WithTheme(Theme())
}

// DefenseFormResult is a defense with its outcome.
type DefenseFormResult struct {
	Type       string
	Successful bool
}

// NewDefenseForm asks for the defense type and outcome.
func NewDefenseForm(timestamp float64, result *DefenseFormResult) *huh.Form {
	opts := make([]huh.Option[string], 0, len(annotate.DefenseTypes))
	for _, d := range annotate.DefenseTypes {
		opts = append(opts, huh.NewOption(d, d))
	}
	if result.Type == "" {
		result.Type = annotate.DefenseTypes[0]
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(fmt.Sprintf("Defense @ %s", timeutil.FormatClock(timestamp))),

			huh.NewSelect[string]().
				Title("Type").
				Options(opts...).
				Value(&result.Type),

			huh.NewConfirm().
				Title("Outcome").
				Affirmative("Successful").
				Negative("Failed").
				Value(&result.Successful),
		),
	).WithTheme(Theme())
}
