// Package export writes a session out of the tool: a clip list for video
// editors and a stats workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/pkg/cliputil"
	"github.com/user/tagging-fight-cli/pkg/timeutil"
)

// ClipKind is what a clip was cut around.
type ClipKind string

const (
	KindRound   ClipKind = "round"
	KindAttack  ClipKind = "attack"
	KindDefense ClipKind = "defense"
	KindStrike  ClipKind = "strike"
)

// ParseClipKind validates a kind name.
func ParseClipKind(s string) (ClipKind, error) {
	switch k := ClipKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRound, KindAttack, KindDefense, KindStrike:
		return k, nil
	default:
		return "", fmt.Errorf("unknown clip kind %q: must be round, attack, defense or strike", s)
	}
}

// Clip is one entry of the exported clip list.
type Clip struct {
	Index           int      `json:"index"`
	Label           string   `json:"label"`
	Start           float64  `json:"start"`
	End             float64  `json:"end"`
	DurationSeconds float64  `json:"durationSeconds"`
	Kind            ClipKind `json:"-"`
}

// ClipOptions select and frame clips.
type ClipOptions struct {
	// Kinds to include. Empty means attack, defense and strike.
	Kinds []ClipKind
	// Padding around strikes.
	Padding cliputil.Padding
	// VideoDuration clamps clip ends when known.
	VideoDuration float64
	// Now closes open intervals; 0 uses VideoDuration.
	Now float64
}

func (o ClipOptions) wants(k ClipKind) bool {
	if len(o.Kinds) == 0 {
		return k != KindRound
	}
	for _, w := range o.Kinds {
		if w == k {
			return true
		}
	}
	return false
}

// BuildClips turns the timeline into clips ordered by start time and indexed from 1.
func BuildClips(tl *annotate.Timeline, opts ClipOptions) []Clip {
	if opts.Padding == (cliputil.Padding{}) {
		opts.Padding = cliputil.DefaultPadding
	}
	now := opts.Now
	if now <= 0 {
		now = opts.VideoDuration
	}

	var clips []Clip
	add := func(kind ClipKind, label string, start, end float64) {
		s, e := cliputil.Bounds(start, end, opts.VideoDuration, opts.Padding)
		clips = append(clips, Clip{
			Label:           label,
			Start:           round2(s),
			End:             round2(e),
			DurationSeconds: round2(e - s),
			Kind:            kind,
		})
	}
	span := func(start, end float64) string {
		return timeutil.FormatClock(start) + "-" + timeutil.FormatClock(end)
	}

	if opts.wants(KindRound) {
		for _, r := range tl.Intervals.Rounds() {
			end := r.EffectiveEnd(now)
			add(KindRound, fmt.Sprintf("Round %d %s", r.Number, span(r.Start, end)), r.Start, end)
		}
	}
	for _, a := range tl.Intervals.Actions() {
		kind := KindAttack
		if a.Kind == annotate.ActionDefense {
			kind = KindDefense
		}
		if !opts.wants(kind) {
			continue
		}
		end := a.EffectiveEnd(now)
		add(kind, fmt.Sprintf("%s %s", titleCase(string(a.Kind)), span(a.Start, end)), a.Start, end)
	}
	if opts.wants(KindStrike) {
		for _, s := range tl.Events.Strikes() {
			number := 0
			if s.Round != nil {
				if r, ok := tl.Intervals.Round(s.Round.RoundID); ok {
					number = r.Number
				}
			}
			add(KindStrike, strikeLabel(s, number), s.Timestamp, s.Timestamp)
		}
	}

	sort.SliceStable(clips, func(i, j int) bool { return clips[i].Start < clips[j].Start })
	for i := range clips {
		clips[i].Index = i + 1
	}
	return clips
}

// strikeLabel names a strike; round is its current round number, 0 for none.
func strikeLabel(s annotate.StrikeEvent, round int) string {
	outcome := "missed"
	if s.HitTarget {
		outcome = "landed"
	}
	label := fmt.Sprintf("%s %s %s", s.Type.Label(), outcome, timeutil.FormatClock(s.Timestamp))
	switch s.Owner {
	case annotate.OwnerOpponent:
		label = "Opponent " + label
	case annotate.OwnerUnassigned:
		label = "Unassigned " + label
	}
	if round > 0 {
		label = fmt.Sprintf("R%d %s", round, label)
	}
	return label
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteClips writes the clip list as an indented JSON array.
func WriteClips(w io.Writer, clips []Clip) error {
	if clips == nil {
		clips = []Clip{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(clips); err != nil {
		return fmt.Errorf("encode clips: %w", err)
	}
	return nil
}
