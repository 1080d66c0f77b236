package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

var roundCmd = &cobra.Command{
	Use:   "round",
	Short: "Mark rounds on the fight timeline",
}

var roundStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the next round (closing the open one)",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		at, err := clockAt(cmd)
		if err != nil {
			return err
		}
		r := sess.Timeline.Intervals.StartRound(at)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Round %d started at %s\n", r.Number, timeutil.FormatClock(at))
		return nil
	},
}

var roundEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the open round",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		open, ok := sess.Timeline.Intervals.ActiveRound()
		if !ok {
			return fmt.Errorf("no round is open")
		}
		at, err := clockAt(cmd)
		if err != nil {
			return err
		}
		sess.Timeline.Intervals.EndRound(at)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Round %d ended at %s\n", open.Number, timeutil.FormatClock(at))
		return nil
	},
}

var roundRemoveCmd = &cobra.Command{
	Use:   "remove <number>",
	Short: "Remove a round; later rounds are renumbered",
	Long: `Remove a round. Remaining rounds are renumbered by start time.
Strikes keep the round they were recorded in; removed rounds show as unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		rounds := sess.Timeline.Intervals.Rounds()
		i, ok := refIndex(args[0], len(rounds))
		if !ok {
			return fmt.Errorf("no round %s (have %d)", args[0], len(rounds))
		}
		sess.Timeline.Intervals.RemoveRound(rounds[i].ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Round %d removed.\n", rounds[i].Number)
		return nil
	},
}

var roundListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		rounds := sess.Timeline.Intervals.Rounds()
		w := newTable()
		fmt.Fprintln(w, "Round\tStart\tEnd\tDuration")
		fmt.Fprintln(w, "-----\t-----\t---\t--------")
		for _, r := range rounds {
			end, length := "open", "-"
			if r.End != nil {
				end = timeutil.FormatClock(*r.End)
				length = timeutil.FormatDuration(*r.End - r.Start)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Number, timeutil.FormatClock(r.Start), end, length)
		}
		w.Flush()
		if len(rounds) == 0 {
			fmt.Println("\nNo rounds marked.")
		}
		return nil
	},
}

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Mark attack and defense phases",
	Long: `Mark attack and defense phases. Strikes inside an attack belong to the athlete,
strikes inside a defense to the opponent. Starting a phase closes the open one.`,
}

func actionStartCmd(kind annotate.ActionKind) *cobra.Command {
	c := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Start a%s %s phase", article(string(kind)), kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := timelineSession()
			if err != nil {
				return err
			}
			at, err := clockAt(cmd)
			if err != nil {
				return err
			}
			sess.Timeline.Intervals.StartAction(kind, at)
			if err := commit(sess); err != nil {
				return err
			}
			fmt.Printf("%s started at %s\n", strings.ToUpper(string(kind)[:1])+string(kind)[1:], timeutil.FormatClock(at))
			return nil
		},
	}
	addAtFlag(c)
	return c
}

func article(word string) string {
	if strings.ContainsAny(word[:1], "aeiou") {
		return "n"
	}
	return ""
}

var actionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the open phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		open, ok := sess.Timeline.Intervals.ActiveAction()
		if !ok {
			return fmt.Errorf("no action is open")
		}
		at, err := clockAt(cmd)
		if err != nil {
			return err
		}
		sess.Timeline.Intervals.EndAction(at)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("%s ended at %s\n", open.Kind, timeutil.FormatClock(at))
		return nil
	},
}

var actionRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a phase by its position in 'action list'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		actions := sess.Timeline.Intervals.Actions()
		i, ok := refIndex(args[0], len(actions))
		if !ok {
			return fmt.Errorf("no action %s (have %d)", args[0], len(actions))
		}
		sess.Timeline.Intervals.RemoveAction(actions[i].ID)
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("%s at %s removed.\n", actions[i].Kind, timeutil.FormatClock(actions[i].Start))
		return nil
	},
}

var actionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attack and defense phases",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		actions := sess.Timeline.Intervals.Actions()
		w := newTable()
		fmt.Fprintln(w, "#\tKind\tStart\tEnd\tDuration")
		fmt.Fprintln(w, "-\t----\t-----\t---\t--------")
		for i, a := range actions {
			end := "open"
			if a.End != nil {
				end = timeutil.FormatClock(*a.End)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, a.Kind, timeutil.FormatClock(a.Start), end, timeutil.FormatDuration(a.Duration()))
		}
		w.Flush()
		if len(actions) == 0 {
			fmt.Println("\nNo actions marked.")
		}
		return nil
	},
}

func init() {
	addAtFlag(roundStartCmd)
	addAtFlag(roundEndCmd)
	addAtFlag(actionEndCmd)

	roundCmd.AddCommand(roundStartCmd, roundEndCmd, roundRemoveCmd, roundListCmd)
	actionCmd.AddCommand(
		actionStartCmd(annotate.ActionAttack),
		actionStartCmd(annotate.ActionDefense),
		actionEndCmd, actionRemoveCmd, actionListCmd,
	)
	rootCmd.AddCommand(roundCmd, actionCmd)
}
