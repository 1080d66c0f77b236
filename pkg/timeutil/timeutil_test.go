package timeutil

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatClock(t *testing.T) {
	Convey("Given playback positions in seconds", t, func() {
		Convey("When formatting whole and fractional values", func() {
			So(FormatClock(0), ShouldEqual, "00:00.00")
			So(FormatClock(90.25), ShouldEqual, "01:30.25")
			So(FormatClock(59.999), ShouldEqual, "01:00.00")
			So(FormatClock(7504.5), ShouldEqual, "125:04.50")
		})

		Convey("When the value is negative", func() {
			So(FormatClock(-3), ShouldEqual, "00:00.00")
		})
	})
}

func TestParseTimeToSeconds(t *testing.T) {
	Convey("Given time strings in the supported layouts", t, func() {
		cases := map[string]float64{
			"90":       90,
			"12.5":     12.5,
			"1:30":     90,
			"01:30.25": 90.25,
			"1:02:03":  3723,
		}
		for in, want := range cases {
			got, err := ParseTimeToSeconds(in)
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, want, 1e-9)
		}

		Convey("Then clock output parses back to the same value", func() {
			got, err := ParseTimeToSeconds(FormatClock(183.4))
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, 183.4, 1e-9)
		})

		Convey("Then malformed input is rejected", func() {
			for _, in := range []string{"", "a:b", "1:2:3:4", "-5", "1:-2"} {
				_, err := ParseTimeToSeconds(in)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestFormatDuration(t *testing.T) {
	Convey("Short and long spans format differently", t, func() {
		So(FormatDuration(45), ShouldEqual, "45.0s")
		So(FormatDuration(185), ShouldEqual, "3m05s")
	})
}
