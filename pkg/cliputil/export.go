package cliputil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExtractClip cuts [start, end) of inputPath into outputPath. With reencode it
// writes H.264/AAC for frame-accurate cuts, otherwise it stream-copies.
func ExtractClip(ctx context.Context, inputPath string, start, end float64, outputPath string, reencode bool) error {
	if end <= start {
		return fmt.Errorf("clip %s: empty window %.3f-%.3f", filepath.Base(outputPath), start, end)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", inputPath,
		"-t", fmt.Sprintf("%.3f", end-start),
	}
	if reencode {
		args = append(args, "-c:v", "libx264", "-c:a", "aac", "-preset", "fast")
	} else {
		args = append(args, "-c", "copy")
	}
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
