package annotate

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var kick = StrikeType{ID: "kick-r", Name: "Right Kick", Category: CategoryKick, Side: SideRight}

func TestResolver(t *testing.T) {
	Convey("Given an open attack and a closed defense", t, func() {
		iv := NewIntervals()
		iv.StartAction(ActionDefense, 0)
		iv.EndAction(10)
		iv.StartAction(ActionAttack, 20)

		Convey("A timestamp inside the defense resolves to the opponent", func() {
			owner, defaulted := iv.ResolveOwner(5, 30, OwnerAthlete)
			So(owner, ShouldEqual, OwnerOpponent)
			So(defaulted, ShouldBeFalse)
		})

		Convey("An open action extends to now", func() {
			owner, _ := iv.ResolveOwner(29, 30, OwnerUnassigned)
			So(owner, ShouldEqual, OwnerAthlete)
			owner, defaulted := iv.ResolveOwner(31, 30, OwnerUnassigned)
			So(owner, ShouldEqual, OwnerUnassigned)
			So(defaulted, ShouldBeTrue)
		})

		Convey("Uncontained timestamps use the configured fallback", func() {
			owner, defaulted := iv.ResolveOwner(15, 30, OwnerOpponent)
			So(owner, ShouldEqual, OwnerOpponent)
			So(defaulted, ShouldBeTrue)
		})

		Convey("Rounds resolve with time in round, or nil", func() {
			iv.StartRound(100)
			So(iv.ResolveRound(50, 130), ShouldBeNil)
			ctx := iv.ResolveRound(112.5, 130)
			So(ctx, ShouldNotBeNil)
			So(ctx.Number, ShouldEqual, 1)
			So(ctx.TimeInRound, ShouldEqual, 12.5)
		})

		Convey("Nearest round picks the closest span", func() {
			_, ok := iv.NearestRound(5, 5)
			So(ok, ShouldBeFalse)
			r1 := iv.StartRound(100)
			iv.EndRound(200)
			r2 := iv.StartRound(300)
			iv.EndRound(400)
			got, _ := iv.NearestRound(240, 500)
			So(got.ID, ShouldEqual, r1.ID)
			got, _ = iv.NearestRound(290, 500)
			So(got.ID, ShouldEqual, r2.ID)
		})
	})
}

func TestStrikeFreezing(t *testing.T) {
	Convey("Given a defense window of 10s with a kick landed at t=5", t, func() {
		tl := NewTimeline(OwnerAthlete)
		tl.Intervals.StartRound(0)
		d := tl.Intervals.StartAction(ActionDefense, 0)
		tl.Intervals.EndAction(10)
		s := tl.AddStrike(kick, 5, 12)
		tl.Events.ToggleHit(s.ID)

		Convey("The strike belongs to the opponent and has landed", func() {
			got, ok := tl.Events.Strike(s.ID)
			So(ok, ShouldBeTrue)
			So(got.Owner, ShouldEqual, OwnerOpponent)
			So(got.HitTarget, ShouldBeTrue)
			So(got.Round.Number, ShouldEqual, 1)
		})

		Convey("Deleting the containing action does not change the stored owner", func() {
			So(tl.Intervals.RemoveAction(d.ID), ShouldBeTrue)
			got, _ := tl.Events.Strike(s.ID)
			So(got.Owner, ShouldEqual, OwnerOpponent)
			So(got.OwnerDefaulted, ShouldBeFalse)
		})

		Convey("A strike outside every action is flagged as defaulted", func() {
			late := tl.AddStrike(kick, 50, 50)
			So(late.Owner, ShouldEqual, OwnerAthlete)
			So(late.OwnerDefaulted, ShouldBeTrue)
		})
	})
}

func TestEventOrdering(t *testing.T) {
	Convey("Strikes added out of order are kept sorted by timestamp", t, func() {
		tl := NewTimeline(OwnerAthlete)
		for _, at := range []float64{30, 10, 20, 10} {
			tl.AddStrike(kick, at, 40)
		}
		strikes := tl.Events.Strikes()
		So(strikes, ShouldHaveLength, 4)
		for i := 1; i < len(strikes); i++ {
			So(strikes[i].Timestamp, ShouldBeGreaterThanOrEqualTo, strikes[i-1].Timestamp)
		}

		Convey("Removing a strike deletes only that strike", func() {
			So(tl.Events.RemoveStrike(strikes[1].ID), ShouldBeTrue)
			So(tl.Events.RemoveStrike(strikes[1].ID), ShouldBeFalse)
			So(tl.Events.Strikes(), ShouldHaveLength, 3)
		})
	})
}

func TestDefenseEvents(t *testing.T) {
	Convey("Defenses record whether they fell in a defense window", t, func() {
		tl := NewTimeline(OwnerAthlete)
		tl.Intervals.StartAction(ActionDefense, 10)
		in := tl.AddDefense("block", true, 12, 12)
		tl.Intervals.EndAction(20)
		out := tl.AddDefense("slip", true, 25, 25)

		So(in.InWindow, ShouldBeTrue)
		So(out.InWindow, ShouldBeFalse)

		toggled, ok := tl.Events.ToggleDefense(in.ID)
		So(ok, ShouldBeTrue)
		So(toggled.Successful, ShouldBeFalse)
		So(tl.Events.RemoveDefense(out.ID), ShouldBeTrue)
		So(tl.Events.Defenses(), ShouldHaveLength, 1)
	})
}

func TestTimelineJSON(t *testing.T) {
	Convey("A timeline survives a JSON round trip with its active pointers", t, func() {
		tl := NewTimeline(OwnerUnassigned)
		r := tl.Intervals.StartRound(0)
		a := tl.Intervals.StartAction(ActionAttack, 3)
		tl.AddStrike(kick, 4, 4)

		data, err := json.Marshal(tl)
		So(err, ShouldBeNil)

		var back Timeline
		So(json.Unmarshal(data, &back), ShouldBeNil)
		So(back.DefaultOwner, ShouldEqual, OwnerUnassigned)
		active, ok := back.Intervals.ActiveRound()
		So(ok, ShouldBeTrue)
		So(active.ID, ShouldEqual, r.ID)
		act, ok := back.Intervals.ActiveAction()
		So(ok, ShouldBeTrue)
		So(act.ID, ShouldEqual, a.ID)
		So(back.Events.Strikes(), ShouldHaveLength, 1)

		Convey("A dangling active pointer is rejected", func() {
			var iv Intervals
			err := json.Unmarshal([]byte(`{"rounds":[],"actions":[],"active_round_id":"x"}`), &iv)
			So(err, ShouldNotBeNil)
		})

		Convey("An open round that is not the active one is rejected", func() {
			var iv Intervals
			err := json.Unmarshal([]byte(`{"rounds":[{"id":"r1","number":1,"start":0}],"actions":[]}`), &iv)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "open but not active")

			err = json.Unmarshal([]byte(`{"rounds":[{"id":"r1","number":1,"start":0},{"id":"r2","number":2,"start":200}],"actions":[],"active_round_id":"r2"}`), &iv)
			So(err, ShouldNotBeNil)
		})

		Convey("An open action that is not the active one is rejected", func() {
			var iv Intervals
			err := json.Unmarshal([]byte(`{"rounds":[],"actions":[{"id":"a1","kind":"attack","start":3}]}`), &iv)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "open but not active")
		})

		Convey("Closed intervals without active pointers restore", func() {
			var iv Intervals
			err := json.Unmarshal([]byte(`{"rounds":[{"id":"r1","number":1,"start":0,"end":180}],"actions":[{"id":"a1","kind":"attack","start":3,"end":9}]}`), &iv)
			So(err, ShouldBeNil)
			_, ok := iv.ActiveRound()
			So(ok, ShouldBeFalse)
			So(iv.Rounds(), ShouldHaveLength, 1)
		})
	})
}

func TestParsers(t *testing.T) {
	Convey("Owner, kind and side parsing", t, func() {
		o, err := ParseOwner("")
		So(err, ShouldBeNil)
		So(o, ShouldEqual, OwnerAthlete)
		_, err = ParseOwner("referee")
		So(err, ShouldNotBeNil)

		k, err := ParseActionKind("Defense")
		So(err, ShouldBeNil)
		So(k.Owner(), ShouldEqual, OwnerOpponent)

		_, err = ParseSide("up")
		So(err, ShouldNotBeNil)

		st, ok := DefaultTaxonomy().Lookup("left hook")
		So(ok, ShouldBeTrue)
		So(st.Key(), ShouldResemble, StrikeKey{Category: CategoryPunch, Side: SideLeft})
	})
}
