// Package stats aggregates annotations into fight statistics. Timeline sessions and
// manual tally sheets are both normalized into counter cells first, then summarized
// by the same function, so the two authoring modes produce the same Report shape.
package stats

import (
	"github.com/user/tagging-fight-cli/annotate"
)

// Style is the coarse fight-style classification.
type Style string

const (
	StyleAggressive Style = "aggressive"
	StyleDefensive  Style = "defensive"
	StyleBalanced   Style = "balanced"
)

const (
	aggressiveRatio = 1.5
	defensiveRatio  = 0.7
)

// DefaultBucketSeconds is the timeline bucket width when none is configured.
const DefaultBucketSeconds = 30.0

// UnknownRound is the round number of strikes outside every round.
const UnknownRound = 0

// ActorTotals are strike counts for one side of the fight.
type ActorTotals struct {
	Total           int     `json:"total"`
	Landed          int     `json:"landed"`
	Missed          int     `json:"missed"`
	Correct         int     `json:"correct"`
	CorrectnessRate float64 `json:"correctness_rate"`
	Accuracy        float64 `json:"accuracy"`
}

func (a *ActorTotals) add(landed, missed, correct int) {
	a.Landed += landed
	a.Missed += missed
	a.Correct += correct
	a.Total += landed + missed
}

func (a *ActorTotals) finish() {
	a.CorrectnessRate = ratio(a.Correct, a.Total)
	a.Accuracy = ratio(a.Landed, a.Total)
}

// DefenseTotals are the athlete's defensive counts.
type DefenseTotals struct {
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// CategoryBreakdown is the athlete's output for one strike category.
type CategoryBreakdown struct {
	Category   annotate.Category `json:"category"`
	Total      int               `json:"total"`
	Landed     int               `json:"landed"`
	Percentage float64           `json:"percentage"`
}

// Bucket is one fixed-width window of the timeline chart.
type Bucket struct {
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	Strikes         int     `json:"strikes"`
	AthleteStrikes  int     `json:"athlete_strikes"`
	OpponentStrikes int     `json:"opponent_strikes"`
	Attacks         int     `json:"attacks"`
	Defenses        int     `json:"defenses"`
}

// RoundStats are the counts scoped to one round. Number 0 is the unknown round.
type RoundStats struct {
	Number             int           `json:"number"`
	Duration           float64       `json:"duration"`
	Athlete            ActorTotals   `json:"athlete"`
	Opponent           ActorTotals   `json:"opponent"`
	Unassigned         int           `json:"unassigned"`
	HitsReceived       int           `json:"hits_received"`
	Defense            DefenseTotals `json:"defense"`
	AttackTime         float64       `json:"attack_time"`
	DefenseTime        float64       `json:"defense_time"`
	AttackDefenseRatio float64       `json:"attack_defense_ratio"`
	Style              Style         `json:"style"`
}

// Report is the aggregate for a whole session. Headline strike fields are the athlete's.
type Report struct {
	Mode               string              `json:"mode"`
	Duration           float64             `json:"duration"`
	TotalStrikes       int                 `json:"total_strikes"`
	LandedStrikes      int                 `json:"landed_strikes"`
	CorrectnessRate    float64             `json:"correctness_rate"`
	Athlete            ActorTotals         `json:"athlete"`
	Opponent           ActorTotals         `json:"opponent"`
	Unassigned         int                 `json:"unassigned"`
	HitsReceived       int                 `json:"hits_received"`
	Defense            DefenseTotals       `json:"defense"`
	Categories         []CategoryBreakdown `json:"categories"`
	AttackTime         float64             `json:"attack_time"`
	DefenseTime        float64             `json:"defense_time"`
	AttackDefenseRatio float64             `json:"attack_defense_ratio"`
	Style              Style               `json:"style"`
	BucketSeconds      float64             `json:"bucket_seconds"`
	Timeline           []Bucket            `json:"timeline"`
	Rounds             []RoundStats        `json:"rounds"`
}

// Round returns the stats of one round number.
func (r Report) Round(number int) (RoundStats, bool) {
	for _, rs := range r.Rounds {
		if rs.Number == number {
			return rs, true
		}
	}
	return RoundStats{}, false
}

// AttackDefenseRatio divides attack time by defense time. With no defense time the
// raw attack time is returned.
func AttackDefenseRatio(attack, defense float64) float64 {
	if defense <= 0 {
		return attack
	}
	return attack / defense
}

// Classify maps attack and defense time to a style through the reported
// AttackDefenseRatio, so the style always agrees with the ratio shown next to
// it. No recorded time at all is balanced.
func Classify(attack, defense float64) Style {
	if attack <= 0 && defense <= 0 {
		return StyleBalanced
	}
	r := AttackDefenseRatio(attack, defense)
	switch {
	case r >= aggressiveRatio:
		return StyleAggressive
	case r <= defensiveRatio:
		return StyleDefensive
	default:
		return StyleBalanced
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
