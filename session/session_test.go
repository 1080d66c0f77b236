package session

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/tally"
)

func TestValidate(t *testing.T) {
	Convey("Given a new session", t, func() {
		s := New(Options{AthleteName: "Nong", Mode: ModeTimeline})
		So(s.Validate(), ShouldBeNil)
		So(s.Key, ShouldNotBeEmpty)

		Convey("A missing athlete blocks the save", func() {
			s.AthleteName = ""
			err := s.Validate()
			So(errors.Is(err, ErrInvalidSession), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "no athlete")
		})

		Convey("An unknown mode and a negative duration are both reported", func() {
			s.Mode = "live"
			s.Duration = -1
			err := s.Validate()
			So(errors.Is(err, ErrInvalidSession), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "unknown mode")
			So(err.Error(), ShouldContainSubstring, "negative duration")
		})
	})
}

func TestEffectiveDuration(t *testing.T) {
	Convey("Effective duration", t, func() {
		Convey("Prefers the recorded duration", func() {
			s := New(Options{AthleteName: "A", Duration: 540})
			So(s.EffectiveDuration(), ShouldEqual, 540)
		})

		Convey("Sums manual round durations", func() {
			s := New(Options{AthleteName: "A", Mode: ModeManual})
			s.Tally.SetRoundDuration(1, 180)
			s.Tally.SetRoundDuration(2, 150)
			So(s.EffectiveDuration(), ShouldEqual, 330)
		})

		Convey("Falls back to the latest timeline mark", func() {
			s := New(Options{AthleteName: "A"})
			s.Timeline.Intervals.StartRound(10)
			s.Timeline.Intervals.EndRound(190)
			s.Timeline.AddStrike(annotate.DefaultTaxonomy()[0], 200, 200)
			So(s.EffectiveDuration(), ShouldEqual, 200)
		})
	})
}

func TestReportFollowsMode(t *testing.T) {
	Convey("Given a manual session with counts", t, func() {
		s := New(Options{AthleteName: "A", Mode: ModeManual})
		key := annotate.DefaultTaxonomy()[0].Key()
		s.Tally.Increment(1, annotate.OwnerAthlete, key, tally.Landed)

		rep := s.Report(0, 30)
		So(rep.Mode, ShouldEqual, "manual")
		So(rep.TotalStrikes, ShouldEqual, 1)

		Convey("A mutation is visible in the next report", func() {
			s.Tally.Increment(1, annotate.OwnerAthlete, key, tally.Missed)
			So(s.Report(0, 30).TotalStrikes, ShouldEqual, 2)
		})
	})
}

func TestSessionJSON(t *testing.T) {
	Convey("A session round trips through JSON", t, func() {
		s := New(Options{AthleteName: "A", OpponentName: "B", DefaultOwner: annotate.OwnerOpponent})
		s.Timeline.Intervals.StartRound(0)
		s.Timeline.AddStrike(annotate.DefaultTaxonomy()[1], 12, 12)

		data, err := json.Marshal(s)
		So(err, ShouldBeNil)

		var back Session
		So(json.Unmarshal(data, &back), ShouldBeNil)
		So(back.Key, ShouldEqual, s.Key)
		So(back.Label(), ShouldEqual, s.Label())
		So(back.Timeline.DefaultOwner, ShouldEqual, annotate.OwnerOpponent)
		So(back.Timeline.Events.Strikes(), ShouldHaveLength, 1)
		_, open := back.Timeline.Intervals.ActiveRound()
		So(open, ShouldBeTrue)

		Convey("Older drafts without stores still load", func() {
			var old Session
			So(json.Unmarshal([]byte(`{"key":"k","athlete_name":"A","mode":"manual"}`), &old), ShouldBeNil)
			So(old.Timeline, ShouldNotBeNil)
			So(old.Tally, ShouldNotBeNil)
			So(old.Validate(), ShouldBeNil)
		})
	})
}
