package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

var strikeCmd = &cobra.Command{
	Use:   "strike",
	Short: "Record strikes on the fight timeline",
	Long: `Record strikes. The owner (athlete or opponent) and the round are resolved
from the phases and rounds open at the strike time and never change afterwards.`,
}

var strikeAddCmd = &cobra.Command{
	Use:   "add <strike-type>",
	Short: "Record a strike at the current timestamp",
	Long:  `Record a strike of a type from 'strike-type list' (by id or name). Use --hit when it landed.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		typ, ok := taxonomy(cmd.Context()).Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown strike type %q: see 'strike-type list'", args[0])
		}
		at, err := clockAt(cmd)
		if err != nil {
			return err
		}
		s := sess.Timeline.AddStrike(typ, at, at)
		if hit, _ := cmd.Flags().GetBool("hit"); hit {
			s, _ = sess.Timeline.Events.ToggleHit(s.ID)
		}
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Strike recorded at %s: %s\n", timeutil.FormatClock(at), describeStrike(s, sess.Timeline))
		if s.OwnerDefaulted {
			fmt.Printf("  No phase open; owner defaulted to %s.\n", s.Owner)
		}
		return nil
	},
}

var strikeHitCmd = &cobra.Command{
	Use:   "hit <ref>",
	Short: "Toggle whether a strike landed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		s, err := findStrike(sess.Timeline.Events, args[0])
		if err != nil {
			return err
		}
		s, _ = sess.Timeline.Events.ToggleHit(s.ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Strike at %s: %s\n", timeutil.FormatClock(s.Timestamp), describeStrike(s, sess.Timeline))
		return nil
	},
}

var strikeRemoveCmd = &cobra.Command{
	Use:   "remove <ref>",
	Short: "Remove a strike",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		s, err := findStrike(sess.Timeline.Events, args[0])
		if err != nil {
			return err
		}
		sess.Timeline.Events.RemoveStrike(s.ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Strike at %s removed.\n", timeutil.FormatClock(s.Timestamp))
		return nil
	},
}

var strikeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List strikes in time order",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		roundFilter, _ := cmd.Flags().GetInt("round")
		ownerFilter, _ := cmd.Flags().GetString("owner")
		if ownerFilter != "" {
			o, err := annotate.ParseOwner(ownerFilter)
			if err != nil {
				return err
			}
			ownerFilter = string(o)
		}
		numbers := roundNumbers(sess.Timeline)

		w := newTable()
		fmt.Fprintln(w, "#\tID\tTime\tRound\tOwner\tType\tLanded")
		fmt.Fprintln(w, "-\t--\t----\t-----\t-----\t----\t------")
		count := 0
		for i, s := range sess.Timeline.Events.Strikes() {
			round := strikeRound(s, numbers)
			if roundFilter > 0 && round != fmt.Sprint(roundFilter) {
				continue
			}
			if ownerFilter != "" && string(s.Owner) != ownerFilter {
				continue
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, shortID(s.ID), timeutil.FormatClock(s.Timestamp),
				round, s.Owner, s.Type.Label(), yesNo(s.HitTarget))
			count++
		}
		w.Flush()
		if count == 0 {
			fmt.Println("\nNo strikes found.")
		} else {
			fmt.Printf("\n%d strike(s) found.\n", count)
		}
		return nil
	},
}

var defenseCmd = &cobra.Command{
	Use:   "defense",
	Short: "Record the athlete's defenses",
}

var defenseAddCmd = &cobra.Command{
	Use:   "add <type>",
	Short: "Record a defense at the current timestamp",
	Long:  fmt.Sprintf("Record a defense (%s). Use --failed when it did not work.", strings.Join(annotate.DefenseTypes, ", ")),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		at, err := clockAt(cmd)
		if err != nil {
			return err
		}
		failed, _ := cmd.Flags().GetBool("failed")
		d := sess.Timeline.AddDefense(strings.ToLower(args[0]), !failed, at, at)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Defense recorded at %s: %s\n", timeutil.FormatClock(at), describeDefense(d))
		if !d.InWindow {
			fmt.Println("  Outside a defense phase; it will not offset hits received.")
		}
		return nil
	},
}

var defenseToggleCmd = &cobra.Command{
	Use:   "toggle <ref>",
	Short: "Flip a defense between successful and failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		d, err := findDefense(sess.Timeline.Events, args[0])
		if err != nil {
			return err
		}
		d, _ = sess.Timeline.Events.ToggleDefense(d.ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Defense at %s: %s\n", timeutil.FormatClock(d.Timestamp), describeDefense(d))
		return nil
	},
}

var defenseRemoveCmd = &cobra.Command{
	Use:   "remove <ref>",
	Short: "Remove a defense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		d, err := findDefense(sess.Timeline.Events, args[0])
		if err != nil {
			return err
		}
		sess.Timeline.Events.RemoveDefense(d.ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Defense at %s removed.\n", timeutil.FormatClock(d.Timestamp))
		return nil
	},
}

var defenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List defenses in time order",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		numbers := roundNumbers(sess.Timeline)
		w := newTable()
		fmt.Fprintln(w, "#\tID\tTime\tRound\tType\tResult\tIn phase")
		fmt.Fprintln(w, "-\t--\t----\t-----\t----\t------\t--------")
		defenses := sess.Timeline.Events.Defenses()
		for i, d := range defenses {
			round := "-"
			if d.Round != nil {
				if n, ok := numbers[d.Round.RoundID]; ok {
					round = fmt.Sprint(n)
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", i+1, shortID(d.ID), timeutil.FormatClock(d.Timestamp),
				round, d.DefenseType, outcome(d.Successful), yesNo(d.InWindow))
		}
		w.Flush()
		if len(defenses) == 0 {
			fmt.Println("\nNo defenses found.")
		}
		return nil
	},
}

// findStrike resolves a 1-based list position or an id prefix.
func findStrike(ev *annotate.Events, ref string) (annotate.StrikeEvent, error) {
	strikes := ev.Strikes()
	if i, ok := refIndex(ref, len(strikes)); ok {
		return strikes[i], nil
	}
	var found []annotate.StrikeEvent
	for _, s := range strikes {
		if strings.HasPrefix(s.ID, ref) {
			found = append(found, s)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return annotate.StrikeEvent{}, fmt.Errorf("no strike %q", ref)
	default:
		return annotate.StrikeEvent{}, fmt.Errorf("strike reference %q is ambiguous", ref)
	}
}

func findDefense(ev *annotate.Events, ref string) (annotate.DefenseEvent, error) {
	defenses := ev.Defenses()
	if i, ok := refIndex(ref, len(defenses)); ok {
		return defenses[i], nil
	}
	var found []annotate.DefenseEvent
	for _, d := range defenses {
		if strings.HasPrefix(d.ID, ref) {
			found = append(found, d)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return annotate.DefenseEvent{}, fmt.Errorf("no defense %q", ref)
	default:
		return annotate.DefenseEvent{}, fmt.Errorf("defense reference %q is ambiguous", ref)
	}
}

// roundNumbers maps round ids to their current numbers.
func roundNumbers(tl *annotate.Timeline) map[string]int {
	out := map[string]int{}
	for _, r := range tl.Intervals.Rounds() {
		out[r.ID] = r.Number
	}
	return out
}

func strikeRound(s annotate.StrikeEvent, numbers map[string]int) string {
	if s.Round == nil {
		return "-"
	}
	if n, ok := numbers[s.Round.RoundID]; ok {
		return fmt.Sprint(n)
	}
	return "?"
}

func describeStrike(s annotate.StrikeEvent, tl *annotate.Timeline) string {
	round := strikeRound(s, roundNumbers(tl))
	return fmt.Sprintf("%s by %s, round %s, %s", s.Type.Label(), s.Owner, round, map[bool]string{true: "landed", false: "missed"}[s.HitTarget])
}

func describeDefense(d annotate.DefenseEvent) string {
	return fmt.Sprintf("%s, %s", d.DefenseType, outcome(d.Successful))
}

func outcome(ok bool) string {
	if ok {
		return "successful"
	}
	return "failed"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	addAtFlag(strikeAddCmd)
	strikeAddCmd.Flags().Bool("hit", false, "the strike landed")
	strikeListCmd.Flags().Int("round", 0, "only this round")
	strikeListCmd.Flags().String("owner", "", "only athlete, opponent or unassigned")

	addAtFlag(defenseAddCmd)
	defenseAddCmd.Flags().Bool("failed", false, "the defense did not work")

	strikeCmd.AddCommand(strikeAddCmd, strikeHitCmd, strikeRemoveCmd, strikeListCmd)
	defenseCmd.AddCommand(defenseAddCmd, defenseToggleCmd, defenseRemoveCmd, defenseListCmd)
	rootCmd.AddCommand(strikeCmd, defenseCmd)
}
