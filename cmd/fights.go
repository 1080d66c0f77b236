package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/cache"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/stats"
)

var fightsCmd = &cobra.Command{
	Use:     "fights",
	Aliases: []string{"fight"},
	Short:   "Browse saved fights",
}

var fightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved fights, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		athlete, _ := cmd.Flags().GetString("athlete")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		fights, err := store.ListFights(cmd.Context(), athlete, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list fights: %w", err)
		}
		if len(fights) == 0 {
			fmt.Println("No fights found.")
			return nil
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tDate\tAthlete\tOpponent\tMode\tDuration\tStrikes\tCorrect\tStyle")
		fmt.Fprintln(w, "--\t----\t-------\t--------\t----\t--------\t-------\t-------\t-----")
		for _, f := range fights {
			date := f.FoughtAt
			if len(date) > 10 {
				date = date[:10]
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n", f.ID, date, f.AthleteName, f.OpponentName,
				f.Mode, timeutil.FormatClock(f.DurationSeconds), f.TotalStrikes, pct(f.CorrectnessRate), f.Style)
		}
		w.Flush()
		fmt.Printf("\n%d fight(s) found.\n", len(fights))
		return nil
	},
}

var fightsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved fight with its stored statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFightID(args[0])
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		f, err := store.GetFight(ctx, id)
		if err != nil {
			return err
		}
		raw, err := store.FightStats(ctx, id)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(map[string]any{"fight": f, "stats": raw})
		}

		fmt.Printf("Fight %d: %s", f.ID, f.AthleteName)
		if f.OpponentName != "" {
			fmt.Printf(" vs %s", f.OpponentName)
		}
		fmt.Printf(" (%s)\n", f.FoughtAt)
		if f.Location != "" {
			fmt.Printf("Location: %s\n", f.Location)
		}
		fmt.Println()

		var rep stats.Report
		if err := json.Unmarshal(raw, &rep); err != nil {
			return fmt.Errorf("failed to decode stored stats: %w", err)
		}
		printReport(rep)

		if withStrikes, _ := cmd.Flags().GetBool("strikes"); withStrikes {
			strikes, err := store.FightStrikes(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to list strikes: %w", err)
			}
			fmt.Println()
			w := newTable()
			fmt.Fprintln(w, "Round\tIn round\tType\tActor\tLanded\tCorrect")
			fmt.Fprintln(w, "-----\t--------\t----\t-----\t------\t-------")
			for _, s := range strikes {
				at := "-"
				if s.TimeInRound != nil {
					at = timeutil.FormatClock(*s.TimeInRound)
				}
				actor := "athlete"
				if s.IsOpponent {
					actor = "opponent"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.Round, at, s.StrikeType, actor, yesNo(s.Landed), yesNo(s.IsCorrect))
			}
			w.Flush()
			fmt.Printf("\n%d strike(s) found.\n", len(strikes))
		}
		return nil
	},
}

var fightsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved fight with its rounds and strikes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFightID(args[0])
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		ok, err := confirm(force, fmt.Sprintf("Delete fight %d?", id), "Its rounds and strikes are deleted too.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ok, err = store.DeleteFight(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to delete fight: %w", err)
		}
		if !ok {
			return fmt.Errorf("no fight %d", id)
		}
		invalidateReport(cmd.Context(), id)
		fmt.Printf("Fight %d deleted.\n", id)
		return nil
	},
}

func parseFightID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid fight id %q", s)
	}
	return id, nil
}

// invalidateReport drops a fight's cached report when a shared cache is configured.
func invalidateReport(ctx context.Context, id int64) {
	if cfg.RedisAddr == "" {
		return
	}
	kv, err := cache.DialRedis(ctx, cfg.RedisAddr)
	if err != nil {
		appLog.Warn("report cache unavailable", zap.Error(err))
		return
	}
	defer kv.Close()
	if err := cache.NewReports(kv, cfg.CacheTTL(), appLog).Invalidate(ctx, id); err != nil {
		appLog.Warn("failed to invalidate cached report", zap.Int64("fight_id", id), zap.Error(err))
	}
}

func init() {
	fightsListCmd.Flags().String("athlete", "", "only fights of this athlete id")
	fightsListCmd.Flags().Int("limit", 50, "maximum number of fights")
	fightsListCmd.Flags().Int("offset", 0, "skip this many fights")
	fightsShowCmd.Flags().Bool("json", false, "print the fight and its stats as JSON")
	fightsShowCmd.Flags().Bool("strikes", false, "list the stored strikes")
	fightsDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	fightsCmd.AddCommand(fightsListCmd, fightsShowCmd, fightsDeleteCmd)
	rootCmd.AddCommand(fightsCmd)
}
