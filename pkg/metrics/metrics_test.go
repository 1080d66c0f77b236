package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func counterValue(name, labelValue string) float64 {
	families, err := GetRegistry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered on that registry", func() {
				So(m, ShouldNotBeNil)
				m.savesTotal.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Save results are counted per label", func() {
			before := counterValue("fighttag_saves_total", "failed")
			RecordSave("failed", 0.25)
			So(counterValue("fighttag_saves_total", "failed"), ShouldEqual, before+1)
		})

		Convey("Rows are added per table and zero is ignored", func() {
			before := counterValue("fighttag_rows_inserted_total", "strikes")
			RecordRowsInserted("strikes", 7)
			RecordRowsInserted("strikes", 0)
			So(counterValue("fighttag_rows_inserted_total", "strikes"), ShouldEqual, before+7)
		})

		Convey("HTTP and cache helpers do not panic", func() {
			So(func() {
				RecordHTTPRequest("/fights", "GET", "200")
				RecordHTTPRequestDuration("/fights", "GET", "200", 3.5)
				RecordCacheLookup("hit")
			}, ShouldNotPanic)
		})

		Convey("The registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
