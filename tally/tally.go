// Package tally is the manual authoring mode: per-round counters with no timestamps.
package tally

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/user/tagging-fight-cli/annotate"
)

// Field is a strike counter.
type Field string

const (
	Landed  Field = "landed"
	Missed  Field = "missed"
	Correct Field = "correct"
)

// ParseField validates a strike counter name.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case Landed, Missed, Correct:
		return f, nil
	default:
		return "", fmt.Errorf("unknown field %q: must be landed, missed or correct", s)
	}
}

// DefenseField is a defense counter.
type DefenseField string

const (
	Successful DefenseField = "successful"
	Failed     DefenseField = "failed"
)

// ParseDefenseField validates a defense counter name.
func ParseDefenseField(s string) (DefenseField, error) {
	switch f := DefenseField(strings.ToLower(strings.TrimSpace(s))); f {
	case Successful, Failed:
		return f, nil
	default:
		return "", fmt.Errorf("unknown defense field %q: must be successful or failed", s)
	}
}

// StrikeCounts are the counters of one (round, actor, strike key) cell.
// Correct never exceeds Landed+Missed.
type StrikeCounts struct {
	Landed  int `json:"landed"`
	Missed  int `json:"missed"`
	Correct int `json:"correct"`
}

// Total is Landed+Missed.
func (c StrikeCounts) Total() int { return c.Landed + c.Missed }

// DefenseCounts are the counters of one (round, actor, defense type) cell.
type DefenseCounts struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// StrikeCell is a populated strike counter cell.
type StrikeCell struct {
	Round  int                `json:"round"`
	Actor  annotate.Owner     `json:"actor"`
	Key    annotate.StrikeKey `json:"key"`
	Counts StrikeCounts       `json:"counts"`
}

// DefenseCell is a populated defense counter cell.
type DefenseCell struct {
	Round       int            `json:"round"`
	Actor       annotate.Owner `json:"actor"`
	DefenseType string         `json:"defense_type"`
	Counts      DefenseCounts  `json:"counts"`
}

type strikeKey struct {
	round int
	actor annotate.Owner
	key   annotate.StrikeKey
}

type defenseKey struct {
	round       int
	actor       annotate.Owner
	defenseType string
}

// Sheet holds every manual counter of a session.
type Sheet struct {
	strikes   map[strikeKey]StrikeCounts
	defenses  map[defenseKey]DefenseCounts
	durations map[int]float64
	rev       uint64
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{
		strikes:   map[strikeKey]StrikeCounts{},
		defenses:  map[defenseKey]DefenseCounts{},
		durations: map[int]float64{},
	}
}

func (s *Sheet) init() {
	if s.strikes == nil {
		s.strikes = map[strikeKey]StrikeCounts{}
	}
	if s.defenses == nil {
		s.defenses = map[defenseKey]DefenseCounts{}
	}
	if s.durations == nil {
		s.durations = map[int]float64{}
	}
}

func validActor(a annotate.Owner) bool {
	return a == annotate.OwnerAthlete || a == annotate.OwnerOpponent
}

// Increment adds one to a strike counter. Correct is clamped at Landed+Missed.
// It reports whether anything changed.
func (s *Sheet) Increment(round int, actor annotate.Owner, key annotate.StrikeKey, field Field) bool {
	if round < 1 || !validActor(actor) {
		return false
	}
	s.init()
	k := strikeKey{round, actor, key}
	c := s.strikes[k]
	switch field {
	case Landed:
		c.Landed++
	case Missed:
		c.Missed++
	case Correct:
		if c.Correct >= c.Total() {
			return false
		}
		c.Correct++
	default:
		return false
	}
	s.strikes[k] = c
	s.rev++
	return true
}

// Decrement subtracts one from a strike counter, flooring at zero. Lowering
// Landed or Missed below Correct pulls Correct down with it.
func (s *Sheet) Decrement(round int, actor annotate.Owner, key annotate.StrikeKey, field Field) bool {
	s.init()
	k := strikeKey{round, actor, key}
	c, ok := s.strikes[k]
	if !ok {
		return false
	}
	switch field {
	case Landed:
		if c.Landed == 0 {
			return false
		}
		c.Landed--
	case Missed:
		if c.Missed == 0 {
			return false
		}
		c.Missed--
	case Correct:
		if c.Correct == 0 {
			return false
		}
		c.Correct--
	default:
		return false
	}
	if c.Correct > c.Total() {
		c.Correct = c.Total()
	}
	if c == (StrikeCounts{}) {
		delete(s.strikes, k)
	} else {
		s.strikes[k] = c
	}
	s.rev++
	return true
}

// IncrementDefense adds one to a defense counter.
func (s *Sheet) IncrementDefense(round int, actor annotate.Owner, defenseType string, field DefenseField) bool {
	if round < 1 || !validActor(actor) || defenseType == "" {
		return false
	}
	s.init()
	k := defenseKey{round, actor, defenseType}
	c := s.defenses[k]
	switch field {
	case Successful:
		c.Successful++
	case Failed:
		c.Failed++
	default:
		return false
	}
	s.defenses[k] = c
	s.rev++
	return true
}

// DecrementDefense subtracts one from a defense counter, flooring at zero.
func (s *Sheet) DecrementDefense(round int, actor annotate.Owner, defenseType string, field DefenseField) bool {
	s.init()
	k := defenseKey{round, actor, defenseType}
	c, ok := s.defenses[k]
	if !ok {
		return false
	}
	switch field {
	case Successful:
		if c.Successful == 0 {
			return false
		}
		c.Successful--
	case Failed:
		if c.Failed == 0 {
			return false
		}
		c.Failed--
	default:
		return false
	}
	if c == (DefenseCounts{}) {
		delete(s.defenses, k)
	} else {
		s.defenses[k] = c
	}
	s.rev++
	return true
}

// SetRoundDuration records how long a manual round lasted. Zero clears it.
func (s *Sheet) SetRoundDuration(round int, seconds float64) bool {
	if round < 1 || seconds < 0 {
		return false
	}
	s.init()
	if seconds == 0 {
		delete(s.durations, round)
	} else {
		s.durations[round] = seconds
	}
	s.rev++
	return true
}

// RoundDuration returns the recorded duration of a round, 0 if unknown.
func (s *Sheet) RoundDuration(round int) float64 { return s.durations[round] }

// Get returns the counters of one strike cell.
func (s *Sheet) Get(round int, actor annotate.Owner, key annotate.StrikeKey) StrikeCounts {
	return s.strikes[strikeKey{round, actor, key}]
}

// GetDefense returns the counters of one defense cell.
func (s *Sheet) GetDefense(round int, actor annotate.Owner, defenseType string) DefenseCounts {
	return s.defenses[defenseKey{round, actor, defenseType}]
}

// Rounds lists every round number that has a duration or any count, ascending.
func (s *Sheet) Rounds() []int {
	seen := map[int]bool{}
	for k := range s.strikes {
		seen[k.round] = true
	}
	for k := range s.defenses {
		seen[k.round] = true
	}
	for r := range s.durations {
		seen[r] = true
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// StrikeCells returns every populated strike cell in a stable order.
func (s *Sheet) StrikeCells() []StrikeCell {
	out := make([]StrikeCell, 0, len(s.strikes))
	for k, c := range s.strikes {
		out = append(out, StrikeCell{Round: k.round, Actor: k.actor, Key: k.key, Counts: c})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		if a.Key.Category != b.Key.Category {
			return a.Key.Category < b.Key.Category
		}
		return a.Key.Side < b.Key.Side
	})
	return out
}

// DefenseCells returns every populated defense cell in a stable order.
func (s *Sheet) DefenseCells() []DefenseCell {
	out := make([]DefenseCell, 0, len(s.defenses))
	for k, c := range s.defenses {
		out = append(out, DefenseCell{Round: k.round, Actor: k.actor, DefenseType: k.defenseType, Counts: c})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.Actor != b.Actor {
			return a.Actor < b.Actor
		}
		return a.DefenseType < b.DefenseType
	})
	return out
}

// Revision counts successful mutations.
func (s *Sheet) Revision() uint64 { return s.rev }

// Empty reports whether nothing has been counted.
func (s *Sheet) Empty() bool {
	return len(s.strikes) == 0 && len(s.defenses) == 0 && len(s.durations) == 0
}

type sheetJSON struct {
	Strikes   []StrikeCell    `json:"strikes"`
	Defenses  []DefenseCell   `json:"defenses"`
	Durations map[int]float64 `json:"durations"`
}

// MarshalJSON writes the populated cells.
func (s *Sheet) MarshalJSON() ([]byte, error) {
	durations := s.durations
	if durations == nil {
		durations = map[int]float64{}
	}
	return json.Marshal(sheetJSON{Strikes: s.StrikeCells(), Defenses: s.DefenseCells(), Durations: durations})
}

// UnmarshalJSON restores a sheet, clamping Correct like Increment would.
func (s *Sheet) UnmarshalJSON(data []byte) error {
	var raw sheetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sheet{}
	s.init()
	for _, c := range raw.Strikes {
		if c.Round < 1 || !validActor(c.Actor) {
			return fmt.Errorf("invalid strike cell: round %d actor %q", c.Round, c.Actor)
		}
		counts := c.Counts
		if counts.Landed < 0 || counts.Missed < 0 || counts.Correct < 0 {
			return fmt.Errorf("negative counts in round %d", c.Round)
		}
		if counts.Correct > counts.Total() {
			counts.Correct = counts.Total()
		}
		s.strikes[strikeKey{c.Round, c.Actor, c.Key}] = counts
	}
	for _, c := range raw.Defenses {
		if c.Round < 1 || !validActor(c.Actor) || c.Counts.Successful < 0 || c.Counts.Failed < 0 {
			return fmt.Errorf("invalid defense cell: round %d actor %q", c.Round, c.Actor)
		}
		s.defenses[defenseKey{c.Round, c.Actor, c.DefenseType}] = c.Counts
	}
	for r, d := range raw.Durations {
		if r >= 1 && d > 0 {
			s.durations[r] = d
		}
	}
	return nil
}
