// Package timeutil holds the playback-clock formatting shared by markers, exports and tooltips.
package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatClock formats seconds as MM:SS.cc (e.g. 01:30.25, 125:04.50).
// Minutes are not wrapped into hours so long sessions stay sortable as text.
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	centis := int64(math.Round(seconds * 100))
	mins := centis / 6000
	secs := (centis % 6000) / 100
	cc := centis % 100
	return fmt.Sprintf("%02d:%02d.%02d", mins, secs, cc)
}

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatDuration formats a span in seconds as a short human string (e.g. 45.0s, 3m05s).
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%dm%02ds", total/60, total%60)
}

// ParseTimeToSeconds parses a time string in H:MM:SS, MM:SS(.cc) or raw seconds format.
// The last component may carry a fraction, so "01:30.25" is 90.25 seconds.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	timeStr = strings.TrimSpace(timeStr)
	parts := strings.Split(timeStr, ":")
	if timeStr == "" || len(parts) > 3 {
		return 0, fmt.Errorf("expected H:MM:SS, MM:SS.cc, or seconds, got '%s'", timeStr)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if last {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil || v < 0 {
				return 0, fmt.Errorf("expected H:MM:SS, MM:SS.cc, or seconds, got '%s'", timeStr)
			}
			total = total*60 + v
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("expected H:MM:SS, MM:SS.cc, or seconds, got '%s'", timeStr)
		}
		total = total*60 + float64(v)
	}
	return total, nil
}
