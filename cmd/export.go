package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/tagging-fight-cli/clip"
	"github.com/user/tagging-fight-cli/pkg/cliputil"
	"github.com/user/tagging-fight-cli/pkg/export"
	"github.com/user/tagging-fight-cli/session"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current draft as clips or a workbook",
}

var exportClipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Export the clip list, and optionally cut it with ffmpeg",
	Long: `Write the clip list as JSON (index, label, start, end, durationSeconds),
ordered by start time. Strikes are padded 3s before and 2s after by default.

With --cut each clip is extracted from the draft's video into --out-dir
(default: <video>-clips next to the video). Requires ffmpeg.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := timelineSession()
		if err != nil {
			return err
		}
		kindsFlag, _ := cmd.Flags().GetStringSlice("kinds")
		var kinds []export.ClipKind
		for _, k := range kindsFlag {
			kind, err := export.ParseClipKind(k)
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
		before, _ := cmd.Flags().GetFloat64("before")
		after, _ := cmd.Flags().GetFloat64("after")

		clips := export.BuildClips(sess.Timeline, export.ClipOptions{
			Kinds:         kinds,
			Padding:       cliputil.Padding{Before: before, After: after},
			VideoDuration: sess.Duration,
			Now:           sess.EffectiveDuration(),
		})

		out, _ := cmd.Flags().GetString("out")
		if err := writeTo(out, func(w io.Writer) error { return export.WriteClips(w, clips) }); err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Printf("%d clip(s) written to %s\n", len(clips), out)
		}

		if cut, _ := cmd.Flags().GetBool("cut"); !cut {
			return nil
		}
		if sess.VideoPath == "" {
			return fmt.Errorf("draft %s has no video; set one with 'session set --video'", sess.ShortKey())
		}
		outDir, _ := cmd.Flags().GetString("out-dir")
		reencode, _ := cmd.Flags().GetBool("reencode")
		return cutClips(cmd, sess, outDir, reencode, clips)
	},
}

var exportWorkbookCmd = &cobra.Command{
	Use:   "workbook",
	Short: "Export the statistics as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := currentSession()
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("fight-%s.xlsx", sess.ShortKey())
		}
		rep := sess.Report(0, cfg.BucketSeconds)
		if err := writeTo(out, func(w io.Writer) error { return export.WriteWorkbook(w, fightInfo(sess), rep) }); err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", out)
		return nil
	},
}

func fightInfo(sess *session.Session) export.FightInfo {
	name := sess.AthleteName
	if name == "" {
		name = sess.AthleteID
	}
	return export.FightInfo{
		Athlete:  name,
		Opponent: sess.OpponentName,
		Date:     sess.FoughtAt.Format("2006-01-02"),
		Location: sess.Location,
		Video:    sess.VideoPath,
	}
}

// writeTo writes to path, or stdout for "" and "-".
func writeTo(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cutClips(cmd *cobra.Command, sess *session.Session, outDir string, reencode bool, clips []export.Clip) error {
	if len(clips) == 0 {
		fmt.Println("No clips to cut.")
		return nil
	}
	jobs := clip.Plan(sess.VideoPath, outDir, clips)
	if err := os.MkdirAll(filepath.Dir(jobs[0].Output), 0755); err != nil {
		return fmt.Errorf("failed to create clip directory: %w", err)
	}

	p := &clip.Processor{VideoPath: sess.VideoPath, Reencode: reencode, Logger: appLog}
	results, err := p.Start(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	var failed []string
	for r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAILED: " + r.Err.Error()
			failed = append(failed, filepath.Base(r.Job.Output))
		}
		fmt.Fprintf(os.Stderr, "[%d/%d] %s (%.1fs) %s\n", r.Done, r.Total, filepath.Base(r.Job.Output), r.Elapsed.Seconds(), status)
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("clip export interrupted: %w", err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d clip(s) failed: %s", len(failed), len(jobs), strings.Join(failed, ", "))
	}
	fmt.Printf("%d clip(s) cut into %s\n", len(jobs), filepath.Dir(jobs[0].Output))
	return nil
}

func init() {
	exportClipsCmd.Flags().StringSlice("kinds", nil, "clip kinds: round, attack, defense, strike (default attack,defense,strike)")
	exportClipsCmd.Flags().StringP("out", "o", "", "write the clip list here (default stdout)")
	exportClipsCmd.Flags().Float64("before", cliputil.DefaultPadding.Before, "seconds of video before each strike")
	exportClipsCmd.Flags().Float64("after", cliputil.DefaultPadding.After, "seconds of video after each strike")
	exportClipsCmd.Flags().Bool("cut", false, "extract the clips with ffmpeg")
	exportClipsCmd.Flags().String("out-dir", "", "directory for cut clips")
	exportClipsCmd.Flags().Bool("reencode", false, "re-encode instead of stream copy (frame accurate, slower)")

	exportWorkbookCmd.Flags().StringP("out", "o", "", "output file (default fight-<key>.xlsx)")

	exportCmd.AddCommand(exportClipsCmd, exportWorkbookCmd)
	rootCmd.AddCommand(exportCmd)
}
