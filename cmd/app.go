package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/db"
	"github.com/user/tagging-fight-cli/draft"
	"github.com/user/tagging-fight-cli/mpv"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/tui/forms"
)

func drafts() *draft.Store {
	return draft.NewStore(cfg.DraftsDir)
}

// currentSession loads the draft named by --draft, or the current one.
func currentSession() (*session.Session, error) {
	return drafts().Current(draftRef)
}

// timelineSession is currentSession restricted to timeline mode.
func timelineSession() (*session.Session, error) {
	sess, err := currentSession()
	if err != nil {
		return nil, err
	}
	if sess.Mode != session.ModeTimeline {
		return nil, fmt.Errorf("draft %s is a %s session; use the tally commands", sess.ShortKey(), sess.Mode)
	}
	return sess, nil
}

// commit marks the session modified and writes the draft.
func commit(sess *session.Session) error {
	sess.Touch()
	if err := drafts().Save(sess); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func openStore() (*db.Store, error) {
	store, err := db.Open(cfg.DBDriver, cfg.DBDSN, appLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// loadTaxonomy reads the coach's strike types. A nil store or a failing query
// falls back to the default list.
func loadTaxonomy(ctx context.Context, store *db.Store) annotate.Taxonomy {
	if store == nil {
		return annotate.DefaultTaxonomy()
	}
	tx, err := store.Taxonomy(ctx, cfg.Coach)
	if err != nil {
		appLog.Warn("taxonomy unavailable, using defaults", zap.Error(err))
		return annotate.DefaultTaxonomy()
	}
	return tx
}

// taxonomy opens the store just long enough to read the strike types.
func taxonomy(ctx context.Context) annotate.Taxonomy {
	store, err := openStore()
	if err != nil {
		appLog.Debug("no database for taxonomy", zap.Error(err))
		return annotate.DefaultTaxonomy()
	}
	defer store.Close()
	return loadTaxonomy(ctx, store)
}

// clockAt is the time to record at: --at when given, else the player clock.
func clockAt(cmd *cobra.Command) (float64, error) {
	if s, _ := cmd.Flags().GetString("at"); s != "" {
		return timeutil.ParseTimeToSeconds(s)
	}
	client := mpv.NewClient(cfg.MPVSocket)
	if err := client.Connect(); err != nil {
		return 0, fmt.Errorf("failed to connect to mpv: %w\n(Is mpv running? Pass --at to record without it)", err)
	}
	defer client.Close()
	t, err := client.CurrentTime()
	if err != nil {
		return 0, fmt.Errorf("failed to get current timestamp: %w", err)
	}
	return t, nil
}

func addAtFlag(c *cobra.Command) {
	c.Flags().String("at", "", "video time (MM:SS.cc, H:MM:SS or seconds); defaults to the mpv position")
}

func addSessionFlags(c *cobra.Command) {
	c.Flags().String("athlete-id", "", "athlete id in the club roster")
	c.Flags().String("athlete", "", "athlete name")
	c.Flags().String("opponent", "", "opponent name")
	c.Flags().String("location", "", "where the fight took place")
	c.Flags().String("notes", "", "free-form notes")
	c.Flags().String("date", "", "fight date (YYYY-MM-DD); defaults to today")
	c.Flags().String("mode", "timeline", "authoring mode: timeline or manual")
	c.Flags().String("duration", "", "fight length (MM:SS or seconds); defaults to the video length")
}

// sessionOptions reads the session flags. With no athlete given on an
// interactive terminal the metadata form is shown instead.
func sessionOptions(cmd *cobra.Command) (session.Options, error) {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return strings.TrimSpace(v)
	}
	in := forms.SessionFormResult{
		AthleteID:    flag("athlete-id"),
		AthleteName:  flag("athlete"),
		OpponentName: flag("opponent"),
		Location:     flag("location"),
		Notes:        flag("notes"),
		Date:         flag("date"),
		Mode:         flag("mode"),
		Duration:     flag("duration"),
	}
	if in.AthleteID == "" && in.AthleteName == "" && interactive() {
		if err := forms.NewSessionForm(&in).Run(); err != nil {
			return session.Options{}, fmt.Errorf("session form: %w", err)
		}
	}
	return optionsFromForm(in)
}

func optionsFromForm(in forms.SessionFormResult) (session.Options, error) {
	opts := session.Options{
		AthleteID:    in.AthleteID,
		AthleteName:  in.AthleteName,
		OpponentName: in.OpponentName,
		Location:     in.Location,
		Notes:        in.Notes,
		DefaultOwner: cfg.Owner(),
	}
	mode, err := session.ParseMode(in.Mode)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return opts, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", in.Date)
		}
		opts.FoughtAt = d
	}
	if in.Duration != "" {
		d, err := timeutil.ParseTimeToSeconds(in.Duration)
		if err != nil {
			return opts, fmt.Errorf("invalid --duration: %w", err)
		}
		opts.Duration = d
	}
	return opts, nil
}

func interactive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// confirm asks a yes/no question unless force is set.
func confirm(force bool, title, description string) (bool, error) {
	if force {
		return true, nil
	}
	if !interactive() {
		return false, fmt.Errorf("%s: pass --force to confirm", title)
	}
	ok := false
	if err := forms.NewConfirmForm(title, description, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// refIndex parses a 1-based list position.
func refIndex(ref string, n int) (int, bool) {
	i, err := strconv.Atoi(ref)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
