package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When options receive zero values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRegistry(registry),
			)

			Convey("Then defaults should survive", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "podium")
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics facade", t, func() {
		Convey("When recording through every helper", func() {
			// The recorders must not panic regardless of label values.
			So(func() {
				RecordWrite("prediction", "applied")
				RecordWrite("race", "queued")
				UpdateOutboxDepth(3)
				RecordReplay("applied")
				RecordReplay("dropped")
				RecordDrain("clean", 12.5)
				RecordDrain("halted", 0.5)
				UpdateConnectivity(true)
				UpdateConnectivity(false)
				RecordRemoteLatency(4.2)
				RecordNotification("races")
				UpdateCachedEntities("users", 7)
				RecordCacheRefresh()
				RecordResultsPublished()
				RecordResultsRetracted()
				RecordScoredRound()
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then our metrics are registered", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
