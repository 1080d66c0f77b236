package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for the current draft",
	Long: `Aggregate the current draft into fight statistics: strike totals and
correctness for the athlete, the opponent's output, hits received and defenses,
the attack/defense time ratio with a style classification, and per-round and
per-bucket breakdowns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		bucket, _ := cmd.Flags().GetFloat64("bucket")
		if bucket <= 0 {
			bucket = cfg.BucketSeconds
		}
		rep := sess.Report(0, bucket)

		round, _ := cmd.Flags().GetInt("round")
		asJSON, _ := cmd.Flags().GetBool("json")
		if round > 0 {
			rs, ok := rep.Round(round)
			if !ok {
				return fmt.Errorf("no round %d", round)
			}
			if asJSON {
				return printJSON(rs)
			}
			printRoundStats(rs)
			return nil
		}
		if asJSON {
			return printJSON(rep)
		}
		fmt.Printf("%s\n\n", sess.Label())
		printReport(rep)
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func printReport(rep stats.Report) {
	w := newTable()
	fmt.Fprintf(w, "Mode:\t%s\n", rep.Mode)
	fmt.Fprintf(w, "Duration:\t%s\n", timeutil.FormatClock(rep.Duration))
	fmt.Fprintf(w, "Strikes:\t%d (%d landed, %d missed)\n", rep.TotalStrikes, rep.Athlete.Landed, rep.Athlete.Missed)
	fmt.Fprintf(w, "Correctness:\t%s\n", pct(rep.CorrectnessRate))
	fmt.Fprintf(w, "Opponent strikes:\t%d (%d landed)\n", rep.Opponent.Total, rep.Opponent.Landed)
	if rep.Unassigned > 0 {
		fmt.Fprintf(w, "Unassigned:\t%d\n", rep.Unassigned)
	}
	fmt.Fprintf(w, "Hits received:\t%d\n", rep.HitsReceived)
	fmt.Fprintf(w, "Defenses:\t%d successful, %d failed (%s)\n", rep.Defense.Successful, rep.Defense.Failed, pct(rep.Defense.SuccessRate))
	fmt.Fprintf(w, "Attack time:\t%s\n", timeutil.FormatDuration(rep.AttackTime))
	fmt.Fprintf(w, "Defense time:\t%s\n", timeutil.FormatDuration(rep.DefenseTime))
	fmt.Fprintf(w, "Attack/defense:\t%.2f\n", rep.AttackDefenseRatio)
	fmt.Fprintf(w, "Style:\t%s\n", rep.Style)
	w.Flush()

	if len(rep.Categories) > 0 {
		fmt.Println()
		w = newTable()
		fmt.Fprintln(w, "Category\tTotal\tLanded\tShare")
		fmt.Fprintln(w, "--------\t-----\t------\t-----")
		for _, c := range rep.Categories {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", c.Category, c.Total, c.Landed, pct(c.Percentage))
		}
		w.Flush()
	}

	if len(rep.Rounds) > 0 {
		fmt.Println()
		w = newTable()
		fmt.Fprintln(w, "Round\tDuration\tStrikes\tLanded\tCorrect\tOpp\tHits recv\tDefenses\tStyle")
		fmt.Fprintln(w, "-----\t--------\t-------\t------\t-------\t---\t---------\t--------\t-----")
		for _, r := range rep.Rounds {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%d\t%d\t%d/%d\t%s\n", roundName(r.Number),
				timeutil.FormatClock(r.Duration), r.Athlete.Total, r.Athlete.Landed, pct(r.Athlete.CorrectnessRate),
				r.Opponent.Total, r.HitsReceived, r.Defense.Successful, r.Defense.Successful+r.Defense.Failed, r.Style)
		}
		w.Flush()
	}

	if len(rep.Timeline) > 0 {
		fmt.Println()
		w = newTable()
		fmt.Fprintln(w, "From\tTo\tAthlete\tOpponent\tAttacks\tDefenses")
		fmt.Fprintln(w, "----\t--\t-------\t--------\t-------\t--------")
		for _, b := range rep.Timeline {
			if b.Strikes == 0 && b.Attacks == 0 && b.Defenses == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", timeutil.FormatClock(b.Start), timeutil.FormatClock(b.End),
				b.AthleteStrikes, b.OpponentStrikes, b.Attacks, b.Defenses)
		}
		w.Flush()
	}
}

func printRoundStats(r stats.RoundStats) {
	w := newTable()
	fmt.Fprintf(w, "Round:\t%s\n", roundName(r.Number))
	fmt.Fprintf(w, "Duration:\t%s\n", timeutil.FormatClock(r.Duration))
	fmt.Fprintf(w, "Strikes:\t%d (%d landed, %d correct)\n", r.Athlete.Total, r.Athlete.Landed, r.Athlete.Correct)
	fmt.Fprintf(w, "Correctness:\t%s\n", pct(r.Athlete.CorrectnessRate))
	fmt.Fprintf(w, "Opponent strikes:\t%d (%d landed)\n", r.Opponent.Total, r.Opponent.Landed)
	fmt.Fprintf(w, "Hits received:\t%d\n", r.HitsReceived)
	fmt.Fprintf(w, "Defenses:\t%d successful, %d failed\n", r.Defense.Successful, r.Defense.Failed)
	fmt.Fprintf(w, "Attack/defense:\t%.2f (%s)\n", r.AttackDefenseRatio, r.Style)
	w.Flush()
}

func roundName(n int) string {
	if n == stats.UnknownRound {
		return "?"
	}
	return fmt.Sprint(n)
}

func init() {
	statsCmd.Flags().Bool("json", false, "print the report as JSON")
	statsCmd.Flags().Int("round", 0, "only this round")
	statsCmd.Flags().Float64("bucket", 0, "timeline bucket width in seconds (default from config)")
	rootCmd.AddCommand(statsCmd)
}
