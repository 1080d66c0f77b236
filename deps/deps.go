// Package deps checks for the external programs the CLI drives.
package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Tool is an external program and where to get it.
type Tool struct {
	Name       string
	InstallURL string
	// Purpose is shown by doctor.
	Purpose string
}

var (
	Mpv    = Tool{Name: "mpv", InstallURL: MpvInstallURL, Purpose: "video playback while annotating"}
	Ffmpeg = Tool{Name: "ffmpeg", InstallURL: FfmpegInstallURL, Purpose: "cutting exported clips"}
)

// Tools lists every external program, in doctor order.
var Tools = []Tool{Mpv, Ffmpeg}

// DependencyError reports a missing program.
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Check returns the resolved path of the tool or a *DependencyError.
func Check(t Tool) (string, error) {
	path, err := lookPath(t.Name)
	if err != nil {
		return "", &DependencyError{Name: t.Name, InstallURL: t.InstallURL}
	}
	return path, nil
}

// CheckMpv checks that mpv is on PATH.
func CheckMpv() error {
	_, err := Check(Mpv)
	return err
}

// CheckFfmpeg checks that ffmpeg is on PATH.
func CheckFfmpeg() error {
	_, err := Check(Ffmpeg)
	return err
}

// Status is the outcome of checking one tool.
type Status struct {
	Tool Tool
	Path string
	Err  error
}

// OK reports whether the tool was found.
func (s Status) OK() bool { return s.Err == nil }

// CheckAll checks every tool and returns one status each.
func CheckAll() []Status {
	out := make([]Status, 0, len(Tools))
	for _, t := range Tools {
		path, err := Check(t)
		out = append(out, Status{Tool: t, Path: path, Err: err})
	}
	return out
}

// Missing returns the errors of the tools that were not found.
func Missing(statuses []Status) []error {
	var errs []error
	for _, s := range statuses {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}
