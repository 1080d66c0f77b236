package cliputil

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[/\\:*?"<>|\s]+`)

// Sanitize makes a label safe for use in a file name.
func Sanitize(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
	if s == "" {
		return "clip"
	}
	return strings.ToLower(s)
}

// FormatTimestamp converts seconds to H-MM-SS for file names.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d-%02d-%02d", total/3600, (total%3600)/60, total%60)
}

// OutputDir returns "<dir>/<video name>-clips" next to the video.
func OutputDir(videoPath string) string {
	base := filepath.Base(videoPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(videoPath), name+"-clips")
}

// ClipPath returns {outputDir}/{index:03d}_{timestamp}_{label}.mp4.
func ClipPath(outputDir string, index int, label string, start float64) string {
	return filepath.Join(outputDir, fmt.Sprintf("%03d_%s_%s.mp4", index, FormatTimestamp(start), Sanitize(label)))
}
