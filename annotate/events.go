package annotate

import (
	"sort"

	"github.com/google/uuid"
)

// StrikeEvent is one recorded strike attempt. Owner and Round are resolved once
// when the event is created and never recomputed.
type StrikeEvent struct {
	ID             string        `json:"id"`
	Type           StrikeType    `json:"type"`
	Timestamp      float64       `json:"timestamp"`
	HitTarget      bool          `json:"hit_target"`
	Owner          Owner         `json:"owner"`
	OwnerDefaulted bool          `json:"owner_defaulted,omitempty"`
	Round          *RoundContext `json:"round,omitempty"`
}

// DefenseEvent is one defensive move by the athlete.
type DefenseEvent struct {
	ID          string        `json:"id"`
	DefenseType string        `json:"defense_type"`
	Timestamp   float64       `json:"timestamp"`
	Successful  bool          `json:"successful"`
	InWindow    bool          `json:"in_window"`
	Round       *RoundContext `json:"round,omitempty"`
}

// Events keeps strikes and defenses sorted by timestamp.
type Events struct {
	strikes  []StrikeEvent
	defenses []DefenseEvent
	rev      uint64
	newID    func() string
}

// NewEvents returns an empty event store.
func NewEvents() *Events {
	return &Events{newID: uuid.NewString}
}

func (ev *Events) id() string {
	if ev.newID == nil {
		ev.newID = uuid.NewString
	}
	return ev.newID()
}

func (ev *Events) insertStrike(s StrikeEvent) {
	i := sort.Search(len(ev.strikes), func(i int) bool {
		return ev.strikes[i].Timestamp > s.Timestamp
	})
	ev.strikes = append(ev.strikes, StrikeEvent{})
	copy(ev.strikes[i+1:], ev.strikes[i:])
	ev.strikes[i] = s
	ev.rev++
}

func (ev *Events) insertDefense(d DefenseEvent) {
	i := sort.Search(len(ev.defenses), func(i int) bool {
		return ev.defenses[i].Timestamp > d.Timestamp
	})
	ev.defenses = append(ev.defenses, DefenseEvent{})
	copy(ev.defenses[i+1:], ev.defenses[i:])
	ev.defenses[i] = d
	ev.rev++
}

// ToggleHit flips HitTarget on a strike. It is the only change allowed after creation.
func (ev *Events) ToggleHit(id string) (StrikeEvent, bool) {
	for i := range ev.strikes {
		if ev.strikes[i].ID == id {
			ev.strikes[i].HitTarget = !ev.strikes[i].HitTarget
			ev.rev++
			return ev.strikes[i], true
		}
	}
	return StrikeEvent{}, false
}

// RemoveStrike deletes a strike.
func (ev *Events) RemoveStrike(id string) bool {
	for i := range ev.strikes {
		if ev.strikes[i].ID == id {
			ev.strikes = append(ev.strikes[:i], ev.strikes[i+1:]...)
			ev.rev++
			return true
		}
	}
	return false
}

// ToggleDefense flips Successful on a defense.
func (ev *Events) ToggleDefense(id string) (DefenseEvent, bool) {
	for i := range ev.defenses {
		if ev.defenses[i].ID == id {
			ev.defenses[i].Successful = !ev.defenses[i].Successful
			ev.rev++
			return ev.defenses[i], true
		}
	}
	return DefenseEvent{}, false
}

// RemoveDefense deletes a defense.
func (ev *Events) RemoveDefense(id string) bool {
	for i := range ev.defenses {
		if ev.defenses[i].ID == id {
			ev.defenses = append(ev.defenses[:i], ev.defenses[i+1:]...)
			ev.rev++
			return true
		}
	}
	return false
}

// Strikes returns a copy of the strikes in timestamp order.
func (ev *Events) Strikes() []StrikeEvent {
	out := make([]StrikeEvent, len(ev.strikes))
	copy(out, ev.strikes)
	return out
}

// Strike finds a strike by ID.
func (ev *Events) Strike(id string) (StrikeEvent, bool) {
	for _, s := range ev.strikes {
		if s.ID == id {
			return s, true
		}
	}
	return StrikeEvent{}, false
}

// Defenses returns a copy of the defenses in timestamp order.
func (ev *Events) Defenses() []DefenseEvent {
	out := make([]DefenseEvent, len(ev.defenses))
	copy(out, ev.defenses)
	return out
}

// Revision counts successful mutations.
func (ev *Events) Revision() uint64 { return ev.rev }
