package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/tally"
)

var tallyCmd = &cobra.Command{
	Use:   "tally",
	Short: "Count strikes and defenses per round without timestamps",
	Long: `Manual mode counters. Each cell is keyed by round, actor (athlete or
opponent) and strike type. Counters never go below zero, and correct never
exceeds landed plus missed.`,
}

var tallyIncCmd = &cobra.Command{
	Use:   "inc <round> <actor> <strike-type> <landed|missed|correct>",
	Short: "Increment a strike counter",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tallyStrike(cmd, args, true)
	},
}

var tallyDecCmd = &cobra.Command{
	Use:   "dec <round> <actor> <strike-type> <landed|missed|correct>",
	Short: "Decrement a strike counter",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tallyStrike(cmd, args, false)
	},
}

var tallyDefenseCmd = &cobra.Command{
	Use:   "defense <round> <actor> <defense-type> <successful|failed>",
	Short: "Increment (or with --dec decrement) a defense counter",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := manualSession()
		if err != nil {
			return err
		}
		round, actor, err := roundAndActor(args[0], args[1])
		if err != nil {
			return err
		}
		field, err := tally.ParseDefenseField(args[3])
		if err != nil {
			return err
		}
		defenseType := strings.ToLower(args[2])
		dec, _ := cmd.Flags().GetBool("dec")
		var changed bool
		if dec {
			changed = sess.Tally.DecrementDefense(round, actor, defenseType, field)
		} else {
			changed = sess.Tally.IncrementDefense(round, actor, defenseType, field)
		}
		if !changed {
			fmt.Println("Nothing changed.")
			return nil
		}
		if err := commit(sess); err != nil {
			return err
		}
		c := sess.Tally.GetDefense(round, actor, defenseType)
		fmt.Printf("Round %d %s %s: %d successful, %d failed\n", round, actor, defenseType, c.Successful, c.Failed)
		return nil
	},
}

var tallyDurationCmd = &cobra.Command{
	Use:   "duration <round> <time>",
	Short: "Set the length of a round",
	Long:  `Set the length of a round, as seconds or MM:SS. Zero is allowed, negative values are refused.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := manualSession()
		if err != nil {
			return err
		}
		round, err := parseRound(args[0])
		if err != nil {
			return err
		}
		secs, err := timeutil.ParseTimeToSeconds(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[1], err)
		}
		if !sess.Tally.SetRoundDuration(round, secs) {
			return fmt.Errorf("invalid round duration %q", args[1])
		}
		if err := commit(sess); err != nil {
			return err
		}
		fmt.Printf("Round %d lasts %s\n", round, timeutil.FormatClock(secs))
		return nil
	},
}

var tallyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every populated counter",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := manualSession()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sess.Tally)
		}

		w := newTable()
		fmt.Fprintln(w, "Round\tActor\tStrike\tLanded\tMissed\tCorrect")
		fmt.Fprintln(w, "-----\t-----\t------\t------\t------\t-------")
		cells := sess.Tally.StrikeCells()
		for _, c := range cells {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", c.Round, c.Actor, c.Key,
				c.Counts.Landed, c.Counts.Missed, c.Counts.Correct)
		}
		w.Flush()

		if defenses := sess.Tally.DefenseCells(); len(defenses) > 0 {
			fmt.Println()
			w = newTable()
			fmt.Fprintln(w, "Round\tActor\tDefense\tSuccessful\tFailed")
			fmt.Fprintln(w, "-----\t-----\t-------\t----------\t------")
			for _, c := range defenses {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", c.Round, c.Actor, c.DefenseType, c.Counts.Successful, c.Counts.Failed)
			}
			w.Flush()
		}

		fmt.Println()
		for _, r := range sess.Tally.Rounds() {
			if d := sess.Tally.RoundDuration(r); d > 0 {
				fmt.Printf("Round %d: %s\n", r, timeutil.FormatClock(d))
			}
		}
		fmt.Printf("%d cell(s) found.\n", len(cells))
		return nil
	},
}

func manualSession() (*session.Session, error) {
	sess, err := currentSession()
	if err != nil {
		return nil, err
	}
	if sess.Mode != session.ModeManual {
		return nil, fmt.Errorf("draft %s is a %s session; use the strike and round commands", sess.ShortKey(), sess.Mode)
	}
	return sess, nil
}

func tallyStrike(cmd *cobra.Command, args []string, inc bool) error {
	sess, err := manualSession()
	if err != nil {
		return err
	}
	round, actor, err := roundAndActor(args[0], args[1])
	if err != nil {
		return err
	}
	typ, ok := taxonomy(cmd.Context()).Lookup(args[2])
	if !ok {
		return fmt.Errorf("unknown strike type %q: see 'strike-type list'", args[2])
	}
	field, err := tally.ParseField(args[3])
	if err != nil {
		return err
	}

	var changed bool
	if inc {
		changed = sess.Tally.Increment(round, actor, typ.Key(), field)
	} else {
		changed = sess.Tally.Decrement(round, actor, typ.Key(), field)
	}
	if !changed {
		fmt.Println("Nothing changed.")
		return nil
	}
	if err := commit(sess); err != nil {
		return err
	}
	c := sess.Tally.Get(round, actor, typ.Key())
	fmt.Printf("Round %d %s %s: %d landed, %d missed, %d correct\n",
		round, actor, typ.Key(), c.Landed, c.Missed, c.Correct)
	return nil
}

func parseRound(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid round %q: must be a number from 1", s)
	}
	return n, nil
}

func roundAndActor(roundArg, actorArg string) (int, annotate.Owner, error) {
	round, err := parseRound(roundArg)
	if err != nil {
		return 0, "", err
	}
	actor, err := annotate.ParseOwner(actorArg)
	if err != nil {
		return 0, "", err
	}
	if actor == annotate.OwnerUnassigned {
		return 0, "", fmt.Errorf("actor must be athlete or opponent")
	}
	return round, actor, nil
}

func init() {
	tallyDefenseCmd.Flags().Bool("dec", false, "decrement instead of increment")
	tallyShowCmd.Flags().Bool("json", false, "print the raw counters as JSON")

	tallyCmd.AddCommand(tallyIncCmd, tallyDecCmd, tallyDefenseCmd, tallyDurationCmd, tallyShowCmd)
	rootCmd.AddCommand(tallyCmd)
}
