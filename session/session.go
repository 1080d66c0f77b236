// Package session is the fight aggregate: metadata, authoring mode and the
// timeline or tally that holds the annotations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/stats"
	"github.com/user/tagging-fight-cli/tally"
)

// ErrInvalidSession is returned when a session is not fit to be saved.
var ErrInvalidSession = errors.New("invalid session")

// Mode is the authoring mode.
type Mode string

const (
	ModeTimeline Mode = "timeline"
	ModeManual   Mode = "manual"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTimeline, ModeManual:
		return m, nil
	case "":
		return ModeTimeline, nil
	default:
		return "", fmt.Errorf("unknown mode %q: must be timeline or manual", s)
	}
}

// Session is one bout of one athlete. It has no server identity until saved;
// Key is what makes repeated saves of the same session land on the same rows.
type Session struct {
	Key          string             `json:"key"`
	AthleteID    string             `json:"athlete_id"`
	AthleteName  string             `json:"athlete_name"`
	OpponentName string             `json:"opponent_name,omitempty"`
	Location     string             `json:"location,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	FoughtAt     time.Time          `json:"fought_at"`
	VideoPath    string             `json:"video_path,omitempty"`
	Mode         Mode               `json:"mode"`
	Duration     float64            `json:"duration"`
	Timeline     *annotate.Timeline `json:"timeline"`
	Tally        *tally.Sheet       `json:"tally"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	metaRev uint64
	memo    stats.Memo
}

// Options describe a new session.
type Options struct {
	AthleteID    string
	AthleteName  string
	OpponentName string
	Location     string
	Notes        string
	FoughtAt     time.Time
	VideoPath    string
	Mode         Mode
	Duration     float64
	DefaultOwner annotate.Owner
}

// New creates a session with a fresh key.
func New(opts Options) *Session {
	now := time.Now().UTC()
	mode := opts.Mode
	if mode == "" {
		mode = ModeTimeline
	}
	fought := opts.FoughtAt
	if fought.IsZero() {
		fought = now
	}
	return &Session{
		Key:          uuid.NewString(),
		AthleteID:    opts.AthleteID,
		AthleteName:  opts.AthleteName,
		OpponentName: opts.OpponentName,
		Location:     opts.Location,
		Notes:        opts.Notes,
		FoughtAt:     fought,
		VideoPath:    opts.VideoPath,
		Mode:         mode,
		Duration:     opts.Duration,
		Timeline:     annotate.NewTimeline(opts.DefaultOwner),
		Tally:        tally.NewSheet(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Touch marks the session as modified.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
	s.metaRev++
}

// SetDuration records the video or fight length. Negative values are ignored.
func (s *Session) SetDuration(d float64) bool {
	if d < 0 || d == s.Duration {
		return false
	}
	s.Duration = d
	s.Touch()
	return true
}

// Revision changes on every mutation of the session or its stores.
func (s *Session) Revision() uint64 {
	r := s.metaRev
	if s.Timeline != nil {
		r += s.Timeline.Revision()
	}
	if s.Tally != nil {
		r += s.Tally.Revision()
	}
	return r
}

// EffectiveDuration is Duration when known. Otherwise manual sessions sum their
// round durations and timeline sessions use the latest recorded time.
func (s *Session) EffectiveDuration() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	var d float64
	switch s.Mode {
	case ModeManual:
		if s.Tally != nil {
			for _, r := range s.Tally.Rounds() {
				d += s.Tally.RoundDuration(r)
			}
		}
	default:
		if s.Timeline == nil {
			return 0
		}
		for _, r := range s.Timeline.Intervals.Rounds() {
			if r.End != nil && *r.End > d {
				d = *r.End
			}
			if r.Start > d {
				d = r.Start
			}
		}
		for _, a := range s.Timeline.Intervals.Actions() {
			if a.End != nil && *a.End > d {
				d = *a.End
			}
			if a.Start > d {
				d = a.Start
			}
		}
		for _, e := range s.Timeline.Events.Strikes() {
			if e.Timestamp > d {
				d = e.Timestamp
			}
		}
		for _, e := range s.Timeline.Events.Defenses() {
			if e.Timestamp > d {
				d = e.Timestamp
			}
		}
	}
	return d
}

// Report aggregates the session, reusing the last result when nothing changed.
// now is the playback position for open intervals; 0 means the end of the video.
func (s *Session) Report(now, bucketSeconds float64) stats.Report {
	opts := stats.Options{Duration: s.EffectiveDuration(), Now: now, BucketSeconds: bucketSeconds}
	return s.memo.Get(s.Revision(), opts, func(o stats.Options) stats.Report {
		if s.Mode == ModeManual {
			return stats.FromTally(s.Tally, o)
		}
		return stats.FromTimeline(s.Timeline, o)
	})
}

// Validate reports why a session cannot be saved. All errors match ErrInvalidSession.
func (s *Session) Validate() error {
	var problems []string
	if strings.TrimSpace(s.AthleteID) == "" && strings.TrimSpace(s.AthleteName) == "" {
		problems = append(problems, "no athlete selected")
	}
	if s.Mode != ModeTimeline && s.Mode != ModeManual {
		problems = append(problems, fmt.Sprintf("unknown mode %q", s.Mode))
	}
	if s.Duration < 0 {
		problems = append(problems, "negative duration")
	}
	if s.Mode == ModeTimeline && s.Timeline == nil {
		problems = append(problems, "timeline session has no timeline")
	}
	if s.Mode == ModeManual && s.Tally == nil {
		problems = append(problems, "manual session has no tally")
	}
	if s.Key == "" {
		problems = append(problems, "missing session key")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSession, strings.Join(problems, "; "))
	}
	return nil
}

// Label is a short human description.
func (s *Session) Label() string {
	name := s.AthleteName
	if name == "" {
		name = s.AthleteID
	}
	if s.OpponentName != "" {
		name += " vs " + s.OpponentName
	}
	return fmt.Sprintf("%s (%s, %s)", name, s.Mode, s.FoughtAt.Format("2006-01-02"))
}

// ShortKey is the first block of the key, enough to tell drafts apart.
func (s *Session) ShortKey() string {
	if i := strings.IndexByte(s.Key, '-'); i > 0 {
		return s.Key[:i]
	}
	return s.Key
}

// UnmarshalJSON decodes a draft and fills in stores missing from older files.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Session(p)
	if s.Timeline == nil {
		s.Timeline = annotate.NewTimeline(annotate.OwnerAthlete)
	}
	if s.Timeline.Intervals == nil {
		s.Timeline.Intervals = annotate.NewIntervals()
	}
	if s.Timeline.Events == nil {
		s.Timeline.Events = annotate.NewEvents()
	}
	if s.Timeline.DefaultOwner == "" {
		s.Timeline.DefaultOwner = annotate.OwnerAthlete
	}
	if s.Tally == nil {
		s.Tally = tally.NewSheet()
	}
	return nil
}
