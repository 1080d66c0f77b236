package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/config"
	"github.com/user/tagging-fight-cli/deps"
	"github.com/user/tagging-fight-cli/mpv"
	"github.com/user/tagging-fight-cli/pkg/logger"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/tui"
)

var Version = "0.1.0"

var (
	configPath string
	draftRef   string

	cfg    *config.Config
	appLog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tagging-fight-cli",
	Short: "A CLI tool for fight video analysis",
	Long: `tagging-fight-cli is a CLI tool for coaches reviewing fight footage in mpv.
Rounds, attack and defense phases, strikes and defenses are tagged against the
video clock, aggregated into statistics and saved to SQLite or PostgreSQL.

Features:
  - Open a video in mpv with a live annotation TUI
  - Tag rounds, actions, strikes and defenses, or tally them by hand
  - Per-round statistics, clip lists and xlsx workbooks
  - Save fights and serve them over a read-only HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		appLog, err = logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "tagging-fight-cli", "stderr")
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tagging-fight-cli version %s\n", Version)
	},
}

var openCmd = &cobra.Command{
	Use:   "open <video-file>",
	Short: "Open a video file for analysis",
	Long: `Open a video file in mpv and start the annotation TUI on the current draft.
A new draft is created when there is none for this video or when --new is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %w", err)
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("failed to access video file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, not a video file: %s", absPath)
		}

		fresh, _ := cmd.Flags().GetBool("new")
		sess, err := sessionForVideo(cmd, absPath, fresh)
		if err != nil {
			return err
		}

		fmt.Printf("Opening video: %s\n", filepath.Base(absPath))
		proc, client, err := mpv.Launch(cmd.Context(), absPath, cfg.MPVSocket)
		if err != nil {
			return fmt.Errorf("failed to launch mpv: %w", err)
		}
		defer func() {
			_ = client.Close()
			if proc.Process != nil {
				_ = proc.Process.Kill()
			}
			_ = proc.Wait()
		}()

		if d, err := client.Duration(); err == nil && sess.SetDuration(d) {
			appLog.Debug("duration from player", zap.Float64("seconds", d))
		}

		// The TUI owns the terminal; log to a file next to the drafts.
		logPath := filepath.Join(filepath.Dir(cfg.DraftsDir), "tui.log")
		_ = os.MkdirAll(filepath.Dir(logPath), 0755)
		if fileLog, err := logger.NewLogger(cfg.LogLevel, "json", "tagging-fight-cli", logPath); err == nil {
			appLog = fileLog
		} else {
			appLog = zap.NewNop()
		}

		store, err := openStore()
		if err != nil {
			appLog.Warn("database unavailable, using default taxonomy", zap.Error(err))
		} else {
			defer store.Close()
		}

		return tui.Run(cmd.Context(), tui.Options{
			Session:       sess,
			Player:        client,
			Drafts:        drafts(),
			Taxonomy:      loadTaxonomy(cmd.Context(), store),
			BucketSeconds: cfg.BucketSeconds,
			Save:          saveFunc(),
			Logger:        appLog,
		})
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external tools (mpv, ffmpeg) are installed and that the database opens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		statuses := deps.CheckAll()
		for _, s := range statuses {
			if s.OK() {
				fmt.Printf("✓ %s: OK (%s)\n", s.Tool.Name, s.Path)
				continue
			}
			fmt.Printf("✗ %s: NOT FOUND (%s)\n", s.Tool.Name, s.Tool.Purpose)
			fmt.Printf("  Install from: %s\n", s.Tool.InstallURL)
		}

		store, dbErr := openStore()
		if dbErr != nil {
			fmt.Printf("✗ database (%s): %v\n", cfg.DBDriver, dbErr)
		} else {
			fmt.Printf("✓ database (%s): OK\n", store.Dialect())
			store.Close()
		}

		fmt.Println()
		missing := deps.Missing(statuses)
		if dbErr != nil {
			missing = append(missing, dbErr)
		}
		if len(missing) > 0 {
			return fmt.Errorf("some dependencies are missing: %w", errors.Join(missing...))
		}
		fmt.Println("All dependencies are installed!")
		return nil
	},
}

// sessionForVideo picks the current draft when it belongs to videoPath, else
// creates a new one.
func sessionForVideo(cmd *cobra.Command, videoPath string, fresh bool) (*session.Session, error) {
	store := drafts()
	if !fresh {
		if cur, err := store.Current(draftRef); err == nil && (cur.VideoPath == "" || cur.VideoPath == videoPath) {
			if cur.VideoPath == "" {
				cur.VideoPath = videoPath
				cur.Touch()
			}
			fmt.Printf("Resuming draft %s: %s\n", cur.ShortKey(), cur.Label())
			return cur, nil
		}
	}
	opts, err := sessionOptions(cmd)
	if err != nil {
		return nil, err
	}
	opts.VideoPath = videoPath
	sess := session.New(opts)
	if err := store.Save(sess); err != nil {
		return nil, err
	}
	if _, err := store.Use(sess.Key); err != nil {
		return nil, err
	}
	fmt.Printf("New draft %s: %s\n", sess.ShortKey(), sess.Label())
	return sess, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML); defaults to $FIGHTTAG_CONFIG")
	rootCmd.PersistentFlags().StringVar(&draftRef, "draft", "", "draft key or prefix; defaults to the current draft")

	openCmd.Flags().Bool("new", false, "start a new draft even if one exists for this video")
	addSessionFlags(openCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
