// Package clip cuts the exported clip list out of the fight video.
package clip

import (
	"github.com/user/tagging-fight-cli/pkg/cliputil"
	"github.com/user/tagging-fight-cli/pkg/export"
)

// Job is one clip with its output file.
type Job struct {
	Clip   export.Clip
	Output string
}

// Plan assigns output files to clips. An empty outDir puts them next to the
// video in "<name>-clips".
func Plan(videoPath, outDir string, clips []export.Clip) []Job {
	if outDir == "" {
		outDir = cliputil.OutputDir(videoPath)
	}
	jobs := make([]Job, len(clips))
	for i, c := range clips {
		jobs[i] = Job{Clip: c, Output: cliputil.ClipPath(outDir, c.Index, c.Label, c.Start)}
	}
	return jobs
}
