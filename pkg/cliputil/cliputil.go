// Package cliputil computes clip windows and file names and cuts clips with ffmpeg.
package cliputil

// Padding is how much video to keep around a point marker.
type Padding struct {
	Before float64
	After  float64
}

// DefaultPadding frames a single strike.
var DefaultPadding = Padding{Before: 3, After: 2}

// MinClipSeconds is the shortest clip that is cut.
const MinClipSeconds = 1.0

// Bounds returns the clip window for a marker. An interval (end > start) is used
// as is; a point (end <= start) is padded. The result is clamped to
// [0, videoDuration] when the duration is known (> 0) and is never shorter
// than MinClipSeconds unless the video itself is.
func Bounds(start, end, videoDuration float64, pad Padding) (float64, float64) {
	if end <= start {
		start, end = start-pad.Before, start+pad.After
	}
	if start < 0 {
		start = 0
	}
	if end-start < MinClipSeconds {
		end = start + MinClipSeconds
	}
	if videoDuration > 0 && end > videoDuration {
		end = videoDuration
		if end-start < MinClipSeconds {
			start = end - MinClipSeconds
			if start < 0 {
				start = 0
			}
		}
	}
	return start, end
}
