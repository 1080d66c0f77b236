package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/persist"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/tui"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current draft as a fight",
	Long: `Write the current draft to the configured backend: the fight row with its
stats snapshot, one row per round, then the strikes in one batch.

Saving is idempotent per draft. A save that stopped part way can be run again
and only writes what is missing. Saving again after edits replaces the stored
fight, rounds and strikes. Strikes with no resolvable owner are left out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			recs, err := persist.ToRecords(sess, persist.MapOptions{BucketSeconds: cfg.BucketSeconds})
			if err != nil {
				return err
			}
			fmt.Printf("Would save %s\n", sess.Label())
			fmt.Printf("  %d round(s), %d strike(s)", len(recs.Rounds), len(recs.Strikes))
			if recs.Unassigned > 0 {
				fmt.Printf(", %d unassigned strike(s) left out", recs.Unassigned)
			}
			fmt.Println()
			return nil
		}

		res, err := saveFunc()(cmd.Context(), sess)
		if err != nil {
			var se *persist.SaveError
			if errors.As(err, &se) {
				return fmt.Errorf("%w (run save again to resume)", err)
			}
			return err
		}
		verb := "Saved"
		switch {
		case res.Replaced:
			verb = "Updated"
		case res.FightExisted:
			verb = "Resumed"
		}
		fmt.Printf("%s fight %d: %d round(s) and %d strike(s) written.\n", verb, res.FightID, res.RoundsInserted, res.StrikesInserted)
		if res.StrikesExisted {
			fmt.Println("Strikes were already stored and were left untouched.")
		}
		return nil
	},
}

// saveFunc persists a session to the configured backend.
func saveFunc() tui.SaveFunc {
	return func(ctx context.Context, sess *session.Session) (persist.SaveResult, error) {
		recs, err := persist.ToRecords(sess, persist.MapOptions{BucketSeconds: cfg.BucketSeconds})
		if err != nil {
			return persist.SaveResult{}, err
		}
		opts := persist.SaveOptions{Timeout: cfg.SaveTimeout(), Logger: appLog}

		if cfg.Backend == "rest" {
			rec := persist.NewRESTRecorder(cfg.RestURL, cfg.RestAPIKey, appLog)
			return persist.Save(ctx, rec, recs, opts)
		}

		store, err := openStore()
		if err != nil {
			return persist.SaveResult{}, err
		}
		defer store.Close()
		res, err := persist.Save(ctx, store, recs, opts)
		if err != nil {
			return res, err
		}
		if res.FightExisted {
			invalidateReport(ctx, res.FightID)
		}
		appLog.Info("fight saved",
			zap.Int64("fight_id", res.FightID),
			zap.String("session_key", sess.Key),
			zap.Int("strikes", res.StrikesInserted),
		)
		return res, nil
	}
}

func init() {
	saveCmd.Flags().Bool("dry-run", false, "show what would be written without saving")
	rootCmd.AddCommand(saveCmd)
}
