package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage fight drafts",
	Long:  `Create, inspect and switch between draft sessions. A draft holds the annotations of one fight until it is saved.`,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new draft and make it current",
	Long:  `Start a new draft session. Without --athlete or --athlete-id a form asks for the fight details.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := sessionOptions(cmd)
		if err != nil {
			return err
		}
		if video, _ := cmd.Flags().GetString("video"); video != "" {
			opts.VideoPath = video
		}
		sess := session.New(opts)
		if err := sess.Validate(); err != nil {
			return err
		}
		store := drafts()
		if err := store.Save(sess); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		if _, err := store.Use(sess.Key); err != nil {
			return err
		}
		fmt.Printf("Draft %s created: %s\n", sess.ShortKey(), sess.Label())
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [ref]",
	Short: "Show a draft",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := draftRef
		if len(args) == 1 {
			ref = args[0]
		}
		sess, err := drafts().Current(ref)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sess)
		}

		fmt.Printf("Draft:     %s\n", sess.Key)
		fmt.Printf("Fight:     %s\n", sess.Label())
		if sess.AthleteID != "" {
			fmt.Printf("Athlete:   %s\n", sess.AthleteID)
		}
		if sess.Location != "" {
			fmt.Printf("Location:  %s\n", sess.Location)
		}
		if sess.VideoPath != "" {
			fmt.Printf("Video:     %s\n", sess.VideoPath)
		}
		fmt.Printf("Duration:  %s\n", timeutil.FormatClock(sess.EffectiveDuration()))
		if sess.Mode == session.ModeManual {
			fmt.Printf("Rounds:    %d tallied\n", len(sess.Tally.Rounds()))
			fmt.Printf("Cells:     %d strike, %d defense\n", len(sess.Tally.StrikeCells()), len(sess.Tally.DefenseCells()))
		} else {
			tl := sess.Timeline
			fmt.Printf("Rounds:    %d\n", len(tl.Intervals.Rounds()))
			fmt.Printf("Actions:   %d\n", len(tl.Intervals.Actions()))
			fmt.Printf("Strikes:   %d\n", len(tl.Events.Strikes()))
			fmt.Printf("Defenses:  %d\n", len(tl.Events.Defenses()))
			if r, ok := tl.Intervals.ActiveRound(); ok {
				fmt.Printf("Open:      round %d since %s\n", r.Number, timeutil.FormatClock(r.Start))
			}
			if a, ok := tl.Intervals.ActiveAction(); ok {
				fmt.Printf("Open:      %s since %s\n", a.Kind, timeutil.FormatClock(a.Start))
			}
		}
		if sess.Notes != "" {
			fmt.Printf("Notes:     %s\n", sess.Notes)
		}
		fmt.Printf("Updated:   %s\n", sess.UpdatedAt.Local().Format(time.DateTime))
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := drafts()
		list, err := store.List()
		if err != nil {
			return err
		}
		current, _ := store.CurrentKey()

		w := newTable()
		fmt.Fprintln(w, "\tKey\tFight\tMode\tUpdated")
		fmt.Fprintln(w, "\t---\t-----\t----\t-------")
		for _, s := range list {
			marker := ""
			if s.Key == current {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, s.ShortKey(), s.Label(), s.Mode, s.UpdatedAt.Local().Format(time.DateTime))
		}
		w.Flush()

		if len(list) == 0 {
			fmt.Println("\nNo drafts found. Run 'session new' to start one.")
		} else {
			fmt.Printf("\n%d draft(s) found.\n", len(list))
		}
		return nil
	},
}

var sessionUseCmd = &cobra.Command{
	Use:   "use <ref>",
	Short: "Make a draft current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := drafts().Use(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Current draft: %s\n", key)
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <ref>",
	Short: "Delete a draft",
	Long:  `Delete a draft and its annotations. Saved fights are not affected. Prompts for confirmation unless --force is used.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := drafts()
		sess, err := store.Load(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		ok, err := confirm(force, "Delete draft "+sess.ShortKey()+"?", sess.Label())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
		key, err := store.Delete(sess.Key)
		if err != nil {
			return err
		}
		fmt.Printf("Draft %s deleted.\n", key)
		return nil
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the details of the current draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		set := func(name string, dst *string) {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = strings.TrimSpace(v)
			}
		}
		set("athlete-id", &sess.AthleteID)
		set("athlete", &sess.AthleteName)
		set("opponent", &sess.OpponentName)
		set("location", &sess.Location)
		set("notes", &sess.Notes)
		set("video", &sess.VideoPath)
		if cmd.Flags().Changed("date") {
			v, _ := cmd.Flags().GetString("date")
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", v)
			}
			sess.FoughtAt = d
		}
		if cmd.Flags().Changed("duration") {
			v, _ := cmd.Flags().GetString("duration")
			d, err := timeutil.ParseTimeToSeconds(v)
			if err != nil {
				return fmt.Errorf("invalid --duration: %w", err)
			}
			sess.SetDuration(d)
		}
		if err := sess.Validate(); err != nil {
			return err
		}
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Draft %s updated: %s\n", sess.ShortKey(), sess.Label())
		return nil
	},
}

func init() {
	addSessionFlags(sessionNewCmd)
	sessionNewCmd.Flags().String("video", "", "video file of the fight")

	sessionShowCmd.Flags().Bool("json", false, "print the draft as JSON")
	sessionDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	sessionSetCmd.Flags().String("athlete-id", "", "athlete id in the club roster")
	sessionSetCmd.Flags().String("athlete", "", "athlete name")
	sessionSetCmd.Flags().String("opponent", "", "opponent name")
	sessionSetCmd.Flags().String("location", "", "where the fight took place")
	sessionSetCmd.Flags().String("notes", "", "free-form notes")
	sessionSetCmd.Flags().String("video", "", "video file of the fight")
	sessionSetCmd.Flags().String("date", "", "fight date (YYYY-MM-DD)")
	sessionSetCmd.Flags().String("duration", "", "fight length (MM:SS or seconds)")

	sessionCmd.AddCommand(sessionNewCmd, sessionShowCmd, sessionListCmd, sessionUseCmd, sessionDeleteCmd, sessionSetCmd)
	rootCmd.AddCommand(sessionCmd)
}
