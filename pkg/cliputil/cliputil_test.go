package cliputil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	cases := []struct {
		name               string
		start, end, dur    float64
		wantStart, wantEnd float64
	}{
		{"interval kept", 10, 20, 100, 10, 20},
		{"point padded", 10, 10, 100, 7, 12},
		{"padded point clamped at zero", 1, 0, 100, 0, 3},
		{"clamped to duration", 98, 98, 100, 95, 100},
		{"unknown duration", 50, 60, 0, 50, 60},
		{"too short interval widened", 10, 10.2, 100, 10, 11},
		{"short video", 0, 0, 0.5, 0, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, e := Bounds(tc.start, tc.end, tc.dur, DefaultPadding)
			assert.InDelta(t, tc.wantStart, s, 1e-9)
			assert.InDelta(t, tc.wantEnd, e, 1e-9)
		})
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "right_kick_landed", Sanitize(" Right Kick: landed? "))
	assert.Equal(t, "clip", Sanitize("///"))
	assert.Equal(t, "1-02-03", FormatTimestamp(3723.9))
	assert.Equal(t, "0-00-00", FormatTimestamp(-5))
	assert.Equal(t, filepath.Join("/v", "bout-clips"), OutputDir("/v/bout.mp4"))
	assert.Equal(t, filepath.Join("/out", "007_0-01-05_jab.mp4"), ClipPath("/out", 7, "Jab", 65.4))
}

func TestExtractClipRejectsEmptyWindow(t *testing.T) {
	err := ExtractClip(context.Background(), "in.mp4", 5, 5, filepath.Join(t.TempDir(), "x.mp4"), false)
	assert.Error(t, err)
}
