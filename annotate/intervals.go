package annotate

import (
	"sort"

	"github.com/google/uuid"
)

// RoundInterval is a competitive round's time window. End is nil while the round is open.
type RoundInterval struct {
	ID     string   `json:"id"`
	Number int      `json:"number"`
	Start  float64  `json:"start"`
	End    *float64 `json:"end,omitempty"`
}

// Open reports whether the round has not been closed yet.
func (r RoundInterval) Open() bool { return r.End == nil }

// EffectiveEnd returns End, or now for an open round.
func (r RoundInterval) EffectiveEnd(now float64) float64 {
	if r.End != nil {
		return *r.End
	}
	return now
}

// Contains reports whether t falls inside the round, treating an open round as ending at now.
func (r RoundInterval) Contains(t, now float64) bool {
	return r.Start <= t && t <= r.EffectiveEnd(now)
}

// ActionInterval is an attack or defense window.
type ActionInterval struct {
	ID    string     `json:"id"`
	Kind  ActionKind `json:"kind"`
	Start float64    `json:"start"`
	End   *float64   `json:"end,omitempty"`
}

// Open reports whether the action has not been closed yet.
func (a ActionInterval) Open() bool { return a.End == nil }

// EffectiveEnd returns End, or now for an open action.
func (a ActionInterval) EffectiveEnd(now float64) float64 {
	if a.End != nil {
		return *a.End
	}
	return now
}

// Contains reports whether t falls inside the action, treating an open action as ending at now.
func (a ActionInterval) Contains(t, now float64) bool {
	return a.Start <= t && t <= a.EffectiveEnd(now)
}

// Duration returns the closed length of the action, 0 while open.
func (a ActionInterval) Duration() float64 {
	if a.End == nil {
		return 0
	}
	return *a.End - a.Start
}

// Intervals holds the two interval families of a session. At most one round and
// one action are open at any time; the active pointers are only moved by the
// methods below.
type Intervals struct {
	rounds         []RoundInterval
	actions        []ActionInterval
	activeRoundID  string
	activeActionID string
	rev            uint64
	newID          func() string
}

// NewIntervals returns an empty store.
func NewIntervals() *Intervals {
	return &Intervals{newID: uuid.NewString}
}

func (iv *Intervals) id() string {
	if iv.newID == nil {
		iv.newID = uuid.NewString
	}
	return iv.newID()
}

// StartRound closes the open round at `at`, then opens round count+1 at `at`.
func (iv *Intervals) StartRound(at float64) RoundInterval {
	iv.EndRound(at)
	r := RoundInterval{ID: iv.id(), Number: len(iv.rounds) + 1, Start: at}
	iv.rounds = append(iv.rounds, r)
	iv.activeRoundID = r.ID
	iv.rev++
	return r
}

// EndRound closes the open round at `at`. It returns false when no round is open.
func (iv *Intervals) EndRound(at float64) bool {
	if iv.activeRoundID == "" {
		return false
	}
	for i := range iv.rounds {
		if iv.rounds[i].ID == iv.activeRoundID {
			iv.rounds[i].End = closeAt(iv.rounds[i].Start, at)
			break
		}
	}
	iv.activeRoundID = ""
	iv.rev++
	return true
}

// RemoveRound deletes a round and renumbers the rest 1..N by start time.
func (iv *Intervals) RemoveRound(id string) bool {
	idx := -1
	for i, r := range iv.rounds {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	iv.rounds = append(iv.rounds[:idx], iv.rounds[idx+1:]...)
	if iv.activeRoundID == id {
		iv.activeRoundID = ""
	}
	iv.renumber()
	iv.rev++
	return true
}

func (iv *Intervals) renumber() {
	sort.SliceStable(iv.rounds, func(i, j int) bool {
		return iv.rounds[i].Start < iv.rounds[j].Start
	})
	for i := range iv.rounds {
		iv.rounds[i].Number = i + 1
	}
}

// ActiveRound returns the open round, if any.
func (iv *Intervals) ActiveRound() (RoundInterval, bool) {
	for _, r := range iv.rounds {
		if r.ID == iv.activeRoundID {
			return r, true
		}
	}
	return RoundInterval{}, false
}

// Rounds returns a copy of the rounds ordered by number.
func (iv *Intervals) Rounds() []RoundInterval {
	out := make([]RoundInterval, len(iv.rounds))
	copy(out, iv.rounds)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Round finds a round by ID.
func (iv *Intervals) Round(id string) (RoundInterval, bool) {
	for _, r := range iv.rounds {
		if r.ID == id {
			return r, true
		}
	}
	return RoundInterval{}, false
}

// StartAction closes the open action of either kind at `at`, then opens a new one.
func (iv *Intervals) StartAction(kind ActionKind, at float64) ActionInterval {
	iv.EndAction(at)
	a := ActionInterval{ID: iv.id(), Kind: kind, Start: at}
	iv.actions = append(iv.actions, a)
	iv.activeActionID = a.ID
	iv.rev++
	return a
}

// EndAction closes the open action at `at`. It returns false when no action is open.
func (iv *Intervals) EndAction(at float64) bool {
	if iv.activeActionID == "" {
		return false
	}
	for i := range iv.actions {
		if iv.actions[i].ID == iv.activeActionID {
			iv.actions[i].End = closeAt(iv.actions[i].Start, at)
			break
		}
	}
	iv.activeActionID = ""
	iv.rev++
	return true
}

// RemoveAction deletes an action. Removing the open action clears the active pointer.
func (iv *Intervals) RemoveAction(id string) bool {
	for i, a := range iv.actions {
		if a.ID == id {
			iv.actions = append(iv.actions[:i], iv.actions[i+1:]...)
			if iv.activeActionID == id {
				iv.activeActionID = ""
			}
			iv.rev++
			return true
		}
	}
	return false
}

// ActiveAction returns the open action, if any.
func (iv *Intervals) ActiveAction() (ActionInterval, bool) {
	for _, a := range iv.actions {
		if a.ID == iv.activeActionID {
			return a, true
		}
	}
	return ActionInterval{}, false
}

// Actions returns a copy of the actions ordered by start time.
func (iv *Intervals) Actions() []ActionInterval {
	out := make([]ActionInterval, len(iv.actions))
	copy(out, iv.actions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Revision counts successful mutations.
func (iv *Intervals) Revision() uint64 { return iv.rev }

// closeAt clamps an end time to the interval start; closing after a backward seek
// yields a zero-length interval instead of a negative one.
func closeAt(start, at float64) *float64 {
	end := at
	if end < start {
		end = start
	}
	return &end
}
