package annotate

// Timeline is the timeline-mode authoring surface: the interval store, the event
// store and the owner policy used for strikes outside every action.
type Timeline struct {
	Intervals    *Intervals `json:"intervals"`
	Events       *Events    `json:"events"`
	DefaultOwner Owner      `json:"default_owner"`
}

// NewTimeline returns an empty timeline with the given owner policy.
func NewTimeline(defaultOwner Owner) *Timeline {
	if defaultOwner == "" {
		defaultOwner = OwnerAthlete
	}
	return &Timeline{
		Intervals:    NewIntervals(),
		Events:       NewEvents(),
		DefaultOwner: defaultOwner,
	}
}

// AddStrike records a strike at `at`. Open intervals are treated as ending at now.
// Owner and round are resolved here and frozen on the event.
func (tl *Timeline) AddStrike(typ StrikeType, at, now float64) StrikeEvent {
	if now < at {
		now = at
	}
	owner, defaulted := tl.Intervals.ResolveOwner(at, now, tl.DefaultOwner)
	s := StrikeEvent{
		ID:             tl.Events.id(),
		Type:           typ,
		Timestamp:      at,
		Owner:          owner,
		OwnerDefaulted: defaulted,
		Round:          tl.Intervals.ResolveRound(at, now),
	}
	tl.Events.insertStrike(s)
	return s
}

// AddDefense records an athlete defense at `at`.
func (tl *Timeline) AddDefense(defenseType string, successful bool, at, now float64) DefenseEvent {
	if now < at {
		now = at
	}
	d := DefenseEvent{
		ID:          tl.Events.id(),
		DefenseType: defenseType,
		Timestamp:   at,
		Successful:  successful,
		InWindow:    tl.Intervals.InDefenseWindow(at, now),
		Round:       tl.Intervals.ResolveRound(at, now),
	}
	tl.Events.insertDefense(d)
	return d
}

// Revision changes whenever an interval or event changes.
func (tl *Timeline) Revision() uint64 {
	return tl.Intervals.Revision() + tl.Events.Revision()
}

// Empty reports whether nothing has been recorded.
func (tl *Timeline) Empty() bool {
	return len(tl.Intervals.rounds) == 0 && len(tl.Intervals.actions) == 0 &&
		len(tl.Events.strikes) == 0 && len(tl.Events.defenses) == 0
}
