package stats

import (
	"encoding/json"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/tally"
)

var (
	jab  = annotate.StrikeType{ID: "jab", Name: "Jab", Category: annotate.CategoryPunch, Side: annotate.SideLeft}
	kick = annotate.StrikeType{ID: "kick-r", Name: "Right Kick", Category: annotate.CategoryKick, Side: annotate.SideRight}
)

func addAt(tl *annotate.Timeline, typ annotate.StrikeType, at float64, hit bool) {
	s := tl.AddStrike(typ, at, at)
	if hit {
		tl.Events.ToggleHit(s.ID)
	}
}

func jsonKeys(v any) []string {
	data, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestEmptySessions(t *testing.T) {
	Convey("Given sessions with nothing recorded", t, func() {
		timeline := FromTimeline(annotate.NewTimeline(annotate.OwnerAthlete), Options{})
		manual := FromTally(tally.NewSheet(), Options{})

		Convey("Rates are zero rather than NaN and the timeline is empty", func() {
			for _, rep := range []Report{timeline, manual} {
				So(rep.TotalStrikes, ShouldEqual, 0)
				So(rep.CorrectnessRate, ShouldEqual, 0)
				So(rep.Athlete.Accuracy, ShouldEqual, 0)
				So(rep.AttackDefenseRatio, ShouldEqual, 0)
				So(rep.Style, ShouldEqual, StyleBalanced)
				So(rep.Timeline, ShouldBeEmpty)
				So(rep.Rounds, ShouldBeEmpty)
			}
		})
	})
}

func TestAttackDefenseRatio(t *testing.T) {
	Convey("Ratio and style classification", t, func() {
		So(AttackDefenseRatio(42, 0), ShouldEqual, 42)
		So(AttackDefenseRatio(30, 20), ShouldEqual, 1.5)

		So(Classify(30, 20), ShouldEqual, StyleAggressive)
		So(Classify(14, 20), ShouldEqual, StyleDefensive)
		So(Classify(20, 20), ShouldEqual, StyleBalanced)
		So(Classify(5, 0), ShouldEqual, StyleAggressive)
		So(Classify(0, 0), ShouldEqual, StyleBalanced)
		So(Classify(0, 12), ShouldEqual, StyleDefensive)
	})

	Convey("With no defense time the style follows the raw attack time", t, func() {
		So(AttackDefenseRatio(1, 0), ShouldEqual, 1)
		So(Classify(1, 0), ShouldEqual, StyleBalanced)
		So(Classify(0.5, 0), ShouldEqual, StyleDefensive)
		So(Classify(1.5, 0), ShouldEqual, StyleAggressive)
	})
}

func TestFullRoundAttack(t *testing.T) {
	Convey("Given 3 landed and 2 missed punches inside one attack spanning a 180s round", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerAthlete)
		tl.Intervals.StartRound(0)
		tl.Intervals.StartAction(annotate.ActionAttack, 0)
		addAt(tl, jab, 10, true)
		addAt(tl, jab, 40, true)
		addAt(tl, jab, 70, false)
		addAt(tl, jab, 100, true)
		addAt(tl, jab, 130, false)
		tl.Intervals.EndAction(180)
		tl.Intervals.EndRound(180)

		rep := FromTimeline(tl, Options{Duration: 180, BucketSeconds: 30})

		Convey("The round shows all five strikes", func() {
			r1, ok := rep.Round(1)
			So(ok, ShouldBeTrue)
			So(r1.Athlete.Total, ShouldEqual, 5)
			So(r1.Athlete.Correct, ShouldBeLessThanOrEqualTo, 5)
			So(r1.Duration, ShouldEqual, 180)
			So(r1.AttackTime, ShouldEqual, 180)
			So(r1.Style, ShouldEqual, StyleAggressive)
		})

		Convey("The timeline buckets sum to five", func() {
			So(rep.Timeline, ShouldHaveLength, 6)
			sum := 0
			for _, b := range rep.Timeline {
				sum += b.Strikes
			}
			So(sum, ShouldEqual, 5)
			So(rep.Timeline[0].Attacks, ShouldEqual, 1)
		})

		Convey("Headline numbers are the athlete's", func() {
			So(rep.TotalStrikes, ShouldEqual, 5)
			So(rep.LandedStrikes, ShouldEqual, 3)
			So(rep.CorrectnessRate, ShouldAlmostEqual, 0.6, 1e-9)
			So(rep.Categories, ShouldHaveLength, 1)
			So(rep.Categories[0].Percentage, ShouldEqual, 100)
			So(rep.AttackDefenseRatio, ShouldEqual, 180)
		})
	})
}

func TestDefenseWindowKick(t *testing.T) {
	Convey("Given a 10s defense window with a kick that landed at t=5", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerAthlete)
		tl.Intervals.StartAction(annotate.ActionDefense, 0)
		tl.Intervals.EndAction(10)
		addAt(tl, kick, 5, true)

		rep := FromTimeline(tl, Options{Duration: 60})

		Convey("The strike counts as an opponent landed hit", func() {
			So(rep.Opponent.Landed, ShouldEqual, 1)
			So(rep.TotalStrikes, ShouldEqual, 0)
			So(rep.HitsReceived, ShouldEqual, 1)
			So(rep.DefenseTime, ShouldEqual, 10)
			So(rep.Style, ShouldEqual, StyleDefensive)
		})

		Convey("It lands in the unknown round bucket", func() {
			unknown, ok := rep.Round(UnknownRound)
			So(ok, ShouldBeTrue)
			So(unknown.Opponent.Total, ShouldEqual, 1)
		})

		Convey("A successful defense in the window offsets the hit", func() {
			tl.AddDefense("block", true, 6, 6)
			tl.AddDefense("slip", true, 30, 30)
			rep := FromTimeline(tl, Options{Duration: 60})
			So(rep.HitsReceived, ShouldEqual, 0)
			So(rep.Defense.Successful, ShouldEqual, 2)
		})
	})
}

func TestBuckets(t *testing.T) {
	Convey("Given a 65s video with 30s buckets", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerAthlete)
		addAt(tl, jab, 0, false)
		addAt(tl, jab, 65, false)
		addAt(tl, jab, 70, false)
		rep := FromTimeline(tl, Options{Duration: 65, BucketSeconds: 30})

		So(rep.Timeline, ShouldHaveLength, 3)
		So(rep.Timeline[2].End, ShouldEqual, 65)
		So(rep.Timeline[0].Strikes, ShouldEqual, 1)
		So(rep.Timeline[2].Strikes, ShouldEqual, 1)
	})
}

func TestModesConverge(t *testing.T) {
	Convey("Given equivalent timeline and manual sessions", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerAthlete)
		tl.Intervals.StartRound(0)
		tl.Intervals.StartAction(annotate.ActionAttack, 0)
		addAt(tl, jab, 10, true)
		addAt(tl, jab, 20, true)
		addAt(tl, jab, 30, false)
		tl.Intervals.StartAction(annotate.ActionDefense, 100)
		addAt(tl, kick, 120, true)
		addAt(tl, kick, 130, false)
		tl.AddDefense("block", true, 125, 125)
		tl.Intervals.EndAction(180)
		tl.Intervals.EndRound(180)

		sheet := tally.NewSheet()
		athlete, opponent := annotate.OwnerAthlete, annotate.OwnerOpponent
		sheet.SetRoundDuration(1, 180)
		sheet.Increment(1, athlete, jab.Key(), tally.Landed)
		sheet.Increment(1, athlete, jab.Key(), tally.Landed)
		sheet.Increment(1, athlete, jab.Key(), tally.Missed)
		sheet.Increment(1, athlete, jab.Key(), tally.Correct)
		sheet.Increment(1, athlete, jab.Key(), tally.Correct)
		sheet.Increment(1, opponent, kick.Key(), tally.Landed)
		sheet.Increment(1, opponent, kick.Key(), tally.Missed)
		sheet.Increment(1, opponent, kick.Key(), tally.Correct)
		sheet.IncrementDefense(1, athlete, "block", tally.Successful)

		fromTimeline := FromTimeline(tl, Options{Duration: 180})
		fromTally := FromTally(sheet, Options{Duration: 180})

		Convey("They share one field set", func() {
			So(jsonKeys(fromTally), ShouldResemble, jsonKeys(fromTimeline))
		})

		Convey("Their totals agree", func() {
			So(fromTally.Athlete, ShouldResemble, fromTimeline.Athlete)
			So(fromTally.Opponent, ShouldResemble, fromTimeline.Opponent)
			So(fromTally.HitsReceived, ShouldEqual, fromTimeline.HitsReceived)
			So(fromTally.Defense, ShouldResemble, fromTimeline.Defense)
			So(fromTally.Categories, ShouldResemble, fromTimeline.Categories)

			r1t, _ := fromTimeline.Round(1)
			r1m, _ := fromTally.Round(1)
			So(r1m.Athlete, ShouldResemble, r1t.Athlete)
			So(r1m.Duration, ShouldEqual, r1t.Duration)
		})
	})
}

func TestUnassignedPolicy(t *testing.T) {
	Convey("Strikes outside every action under the unassigned policy stay out of actor totals", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerUnassigned)
		addAt(tl, jab, 5, true)
		rep := FromTimeline(tl, Options{Duration: 30})
		So(rep.Unassigned, ShouldEqual, 1)
		So(rep.TotalStrikes, ShouldEqual, 0)
		So(rep.Opponent.Total, ShouldEqual, 0)
		So(rep.Timeline[0].Strikes, ShouldEqual, 1)
	})
}

func TestMemo(t *testing.T) {
	Convey("The memo recomputes only when the revision or options change", t, func() {
		tl := annotate.NewTimeline(annotate.OwnerAthlete)
		var m Memo
		calls := 0
		compute := func(o Options) Report {
			calls++
			return FromTimeline(tl, o)
		}

		m.Get(tl.Revision(), Options{Duration: 60}, compute)
		m.Get(tl.Revision(), Options{Duration: 60}, compute)
		So(calls, ShouldEqual, 1)
		So(m.Hits(), ShouldEqual, 1)

		addAt(tl, jab, 3, true)
		rep := m.Get(tl.Revision(), Options{Duration: 60}, compute)
		So(calls, ShouldEqual, 2)
		So(rep.TotalStrikes, ShouldEqual, 1)

		m.Get(tl.Revision(), Options{Duration: 60, BucketSeconds: 10}, compute)
		So(calls, ShouldEqual, 3)
	})
}
