package export

import (
	"bytes"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/stats"
)

func sampleTimeline() *annotate.Timeline {
	tl := annotate.NewTimeline(annotate.OwnerAthlete)
	tl.Intervals.StartRound(0)
	tl.Intervals.StartAction(annotate.ActionAttack, 10)
	jab := tl.AddStrike(annotate.DefaultTaxonomy()[0], 12.5, 12.5)
	tl.Events.ToggleHit(jab.ID)
	tl.Intervals.EndAction(20)
	tl.Intervals.StartAction(annotate.ActionDefense, 30)
	tl.AddStrike(annotate.DefaultTaxonomy()[5], 31, 31)
	tl.Intervals.EndAction(40)
	tl.Intervals.EndRound(180)
	return tl
}

func TestBuildClips(t *testing.T) {
	Convey("Given a timeline with two actions and two strikes", t, func() {
		tl := sampleTimeline()

		Convey("The default export holds actions and strikes ordered by start", func() {
			clips := BuildClips(tl, ClipOptions{VideoDuration: 600})
			So(clips, ShouldHaveLength, 4)
			for i, c := range clips {
				So(c.Index, ShouldEqual, i+1)
				So(c.DurationSeconds, ShouldAlmostEqual, c.End-c.Start, 0.001)
			}

			So(clips[0].Kind, ShouldEqual, KindStrike)
			So(clips[0].Start, ShouldEqual, 9.5)
			So(clips[0].End, ShouldEqual, 14.5)
			So(clips[0].Label, ShouldEqual, "R1 Jab landed 00:12.50")

			So(clips[1].Kind, ShouldEqual, KindAttack)
			So(clips[1].Label, ShouldEqual, "Attack 00:10.00-00:20.00")

			So(clips[2].Label, ShouldEqual, "R1 Opponent Right Kick missed 00:31.00")
			So(clips[3].Kind, ShouldEqual, KindDefense)
		})

		Convey("Kinds filter the export", func() {
			clips := BuildClips(tl, ClipOptions{Kinds: []ClipKind{KindRound}})
			So(clips, ShouldHaveLength, 1)
			So(clips[0].Label, ShouldEqual, "Round 1 00:00.00-03:00.00")
			So(clips[0].DurationSeconds, ShouldEqual, 180)
		})

		Convey("The JSON carries exactly the clip-list fields", func() {
			var buf bytes.Buffer
			So(WriteClips(&buf, BuildClips(tl, ClipOptions{Kinds: []ClipKind{KindRound}})), ShouldBeNil)

			var decoded []map[string]any
			So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)
			So(decoded, ShouldHaveLength, 1)
			So(decoded[0], ShouldContainKey, "durationSeconds")
			So(len(decoded[0]), ShouldEqual, 5)
		})

		Convey("An empty list is written as []", func() {
			var buf bytes.Buffer
			So(WriteClips(&buf, nil), ShouldBeNil)
			So(buf.String(), ShouldEqual, "[]\n")
		})
	})

	Convey("Clip kinds parse case-insensitively", t, func() {
		k, err := ParseClipKind(" Strike ")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, KindStrike)
		_, err = ParseClipKind("knockout")
		So(err, ShouldNotBeNil)
	})
}

func TestWriteWorkbook(t *testing.T) {
	Convey("Given a report from a timeline", t, func() {
		rep := stats.FromTimeline(sampleTimeline(), stats.Options{Duration: 180})

		var buf bytes.Buffer
		err := WriteWorkbook(&buf, FightInfo{Athlete: "Nong", Opponent: "Kru"}, rep)
		So(err, ShouldBeNil)

		f, err := excelize.OpenReader(&buf)
		So(err, ShouldBeNil)
		defer f.Close()

		Convey("It has the four sheets in order", func() {
			So(f.GetSheetList(), ShouldResemble, []string{SheetSummary, SheetRounds, SheetCategories, SheetTimeline})
		})

		Convey("The summary carries the headline numbers", func() {
			v, err := f.GetCellValue(SheetSummary, "B2")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "Nong")
			v, err = f.GetCellValue(SheetSummary, "A9")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "Total strikes")
			v, err = f.GetCellValue(SheetSummary, "B9")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "1")
		})

		Convey("Rounds and timeline rows follow the report", func() {
			rows, err := f.GetRows(SheetRounds)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1+len(rep.Rounds))

			rows, err = f.GetRows(SheetTimeline)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1+len(rep.Timeline))
			So(rows[1][0], ShouldEqual, "00:00.00")
		})
	})
}
