package annotate

import (
	"encoding/json"
	"fmt"
)

type intervalsJSON struct {
	Rounds         []RoundInterval  `json:"rounds"`
	Actions        []ActionInterval `json:"actions"`
	ActiveRoundID  string           `json:"active_round_id,omitempty"`
	ActiveActionID string           `json:"active_action_id,omitempty"`
}

// MarshalJSON writes the store including its active pointers.
func (iv *Intervals) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalsJSON{
		Rounds:         nonNil(iv.rounds),
		Actions:        nonNil(iv.actions),
		ActiveRoundID:  iv.activeRoundID,
		ActiveActionID: iv.activeActionID,
	})
}

// UnmarshalJSON restores a store written by MarshalJSON. Active pointers must
// reference an open interval of the right family, and every open interval must
// be the active one.
func (iv *Intervals) UnmarshalJSON(data []byte) error {
	var raw intervalsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	activeRound := false
	for _, r := range raw.Rounds {
		if r.End != nil {
			continue
		}
		if r.ID != raw.ActiveRoundID {
			return fmt.Errorf("round %q is open but not active", r.ID)
		}
		activeRound = true
	}
	if raw.ActiveRoundID != "" && !activeRound {
		return fmt.Errorf("active round %q is not an open round", raw.ActiveRoundID)
	}
	activeAction := false
	for _, a := range raw.Actions {
		if a.End != nil {
			continue
		}
		if a.ID != raw.ActiveActionID {
			return fmt.Errorf("action %q is open but not active", a.ID)
		}
		activeAction = true
	}
	if raw.ActiveActionID != "" && !activeAction {
		return fmt.Errorf("active action %q is not an open action", raw.ActiveActionID)
	}

	iv.rounds = raw.Rounds
	iv.actions = raw.Actions
	iv.activeRoundID = raw.ActiveRoundID
	iv.activeActionID = raw.ActiveActionID
	return nil
}

type eventsJSON struct {
	Strikes  []StrikeEvent  `json:"strikes"`
	Defenses []DefenseEvent `json:"defenses"`
}

// MarshalJSON writes strikes and defenses.
func (ev *Events) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventsJSON{Strikes: nonNil(ev.strikes), Defenses: nonNil(ev.defenses)})
}

// UnmarshalJSON restores the store, re-sorting by timestamp.
func (ev *Events) UnmarshalJSON(data []byte) error {
	var raw eventsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ev.strikes, ev.defenses = nil, nil
	for _, s := range raw.Strikes {
		ev.insertStrike(s)
	}
	for _, d := range raw.Defenses {
		ev.insertDefense(d)
	}
	ev.rev = 0
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
