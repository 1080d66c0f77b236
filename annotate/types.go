// Package annotate holds the fight-video annotation model: round and action intervals,
// strike and defense events, containment resolution and the session aggregate.
package annotate

import (
	"fmt"
	"strings"
)

// Owner identifies who performed a strike.
type Owner string

const (
	OwnerAthlete  Owner = "athlete"
	OwnerOpponent Owner = "opponent"
	// OwnerUnassigned marks strikes outside every action interval when the
	// session policy refuses to guess.
	OwnerUnassigned Owner = "unassigned"
)

// ParseOwner validates an owner policy value.
func ParseOwner(s string) (Owner, error) {
	switch o := Owner(strings.ToLower(strings.TrimSpace(s))); o {
	case OwnerAthlete, OwnerOpponent, OwnerUnassigned:
		return o, nil
	case "":
		return OwnerAthlete, nil
	default:
		return "", fmt.Errorf("unknown owner %q: must be one of athlete, opponent, unassigned", s)
	}
}

// ActionKind is the kind of an action interval.
type ActionKind string

const (
	// ActionAttack means the athlete is the actor.
	ActionAttack ActionKind = "attack"
	// ActionDefense means the opponent is the actor being defended against.
	ActionDefense ActionKind = "defense"
)

// ParseActionKind validates an action kind.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ActionAttack, ActionDefense:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action kind %q: must be attack or defense", s)
	}
}

// Owner returns the actor implied by the action kind.
func (k ActionKind) Owner() Owner {
	if k == ActionDefense {
		return OwnerOpponent
	}
	return OwnerAthlete
}

// Category is a strike family such as punch or kick.
type Category string

const (
	CategoryPunch Category = "punch"
	CategoryKick  Category = "kick"
	CategoryKnee  Category = "knee"
	CategoryElbow Category = "elbow"
	CategoryCombo Category = "combo"
)

// ParseCategory validates a category value.
func ParseCategory(s string) (Category, error) {
	switch v := Category(strings.ToLower(strings.TrimSpace(s))); v {
	case CategoryPunch, CategoryKick, CategoryKnee, CategoryElbow, CategoryCombo:
		return v, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Side is the limb side of a strike. Empty means the taxonomy entry has no side.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBoth  Side = "both"
)

// ParseSide validates a side value.
func ParseSide(s string) (Side, error) {
	switch v := Side(strings.ToLower(strings.TrimSpace(s))); v {
	case SideNone, SideLeft, SideRight, SideBoth:
		return v, nil
	default:
		return "", fmt.Errorf("unknown side %q: must be left, right, both or empty", s)
	}
}

// StrikeType is one entry of the coach-owned strike taxonomy.
type StrikeType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Side     Side     `json:"side,omitempty"`
}

// Label returns a short display name.
func (t StrikeType) Label() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Side == SideNone {
		return string(t.Category)
	}
	return string(t.Side) + " " + string(t.Category)
}

// StrikeKey groups strikes for counting.
type StrikeKey struct {
	Category Category `json:"category"`
	Side     Side     `json:"side,omitempty"`
}

// String is "category" or "side category".
func (k StrikeKey) String() string {
	if k.Side == SideNone {
		return string(k.Category)
	}
	return string(k.Side) + " " + string(k.Category)
}

// Key returns the counting key of the strike type.
func (t StrikeType) Key() StrikeKey {
	return StrikeKey{Category: t.Category, Side: t.Side}
}

// Taxonomy is the ordered strike-type list a coach works with.
type Taxonomy []StrikeType

// Lookup finds a strike type by ID or case-insensitive name.
func (tx Taxonomy) Lookup(ref string) (StrikeType, bool) {
	for _, t := range tx {
		if t.ID == ref || strings.EqualFold(t.Name, ref) {
			return t, true
		}
	}
	return StrikeType{}, false
}

// DefaultTaxonomy is used when the coach has not defined strike types yet.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		{ID: "jab", Name: "Jab", Category: CategoryPunch, Side: SideLeft},
		{ID: "cross", Name: "Cross", Category: CategoryPunch, Side: SideRight},
		{ID: "hook-l", Name: "Left Hook", Category: CategoryPunch, Side: SideLeft},
		{ID: "hook-r", Name: "Right Hook", Category: CategoryPunch, Side: SideRight},
		{ID: "kick-l", Name: "Left Kick", Category: CategoryKick, Side: SideLeft},
		{ID: "kick-r", Name: "Right Kick", Category: CategoryKick, Side: SideRight},
		{ID: "knee", Name: "Knee", Category: CategoryKnee, Side: SideBoth},
		{ID: "elbow", Name: "Elbow", Category: CategoryElbow, Side: SideBoth},
		{ID: "combo", Name: "Combo", Category: CategoryCombo},
	}
}

// DefenseTypes lists the defense vocabulary used by both authoring modes.
var DefenseTypes = []string{"block", "slip", "parry", "evade", "clinch"}

// RoundContext is the round a timestamp resolved to.
type RoundContext struct {
	RoundID     string  `json:"round_id"`
	Number      int     `json:"number"`
	TimeInRound float64 `json:"time_in_round"`
}

// Playback is the video player collaborator. The core only reads the clock;
// Seek is used when a marker is selected.
type Playback interface {
	CurrentTime() (float64, error)
	Duration() (float64, error)
	Seek(seconds float64) error
	Play() error
	Pause() error
}
