package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

// SessionFormResult is the metadata of a new fight session, as typed.
type SessionFormResult struct {
	AthleteID    string
	AthleteName  string
	OpponentName string
	Location     string
	Notes        string
	// Date is YYYY-MM-DD; empty means today.
	Date string
	// Mode is timeline or manual.
	Mode string
	// Duration is MM:SS or seconds; empty means unknown.
	Duration string
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := timeutil.ParseTimeToSeconds(s); err != nil {
		return err
	}
	return nil
}

// NewSessionForm asks for the fight metadata in two steps.
func NewSessionForm(result *SessionFormResult) *huh.Form {
	if result.Mode == "" {
		result.Mode = "timeline"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title("New fight").Description("Step 1 of 2: Who fought"),

			huh.NewInput().
				Title("Athlete").
				Description("Name of the athlete under review").
				Value(&result.AthleteName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" && strings.TrimSpace(result.AthleteID) == "" {
						return fmt.Errorf("athlete is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Athlete id").
				Description("Optional - roster id").
				Value(&result.AthleteID),

			huh.NewInput().
				Title("Opponent").
				Description("Optional").
				Value(&result.OpponentName),
		),

		huh.NewGroup(
			huh.NewNote().Title("New fight").Description("Step 2 of 2: The bout"),

			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("Timeline - tag against the video", "timeline"),
					huh.NewOption("Manual - count per round", "manual"),
				).
				Value(&result.Mode),

			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD, empty for today").
				Value(&result.Date).
				Validate(validateDate),

			huh.NewInput().
				Title("Duration").
				Description("MM:SS or seconds, empty to take the video length").
				Value(&result.Duration).
				Validate(validateDuration),

			huh.NewInput().
				Title("Location").
				Description("Optional").
				Value(&result.Location),

			huh.NewText().
				Title("Notes").
				Description("Optional").
				Value(&result.Notes),
		),
	).WithTheme(Theme())
}
