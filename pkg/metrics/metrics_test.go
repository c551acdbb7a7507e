package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with default options", func() {
			m := NewManager()

			Convey("Then it should be created on its own registry", func() {
				So(m, ShouldNotBeNil)
				So(m.registry, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("batch"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithRegistry(registry),
			)

			Convey("Then the options take effect", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "test")
				So(m.subsystem, ShouldEqual, "batch")
				So(m.registry, ShouldEqual, registry)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline activity", func() {
			RecordSequenceProcessed()
			RecordSequenceFailed()
			RecordWarning("imputed_fps")
			RecordFrames(120, 30)
			RecordStageLatency("resample", 2.5)
			RecordSequenceLatency(12.0)
			UpdateQueueSize(3)
			UpdateQueueCapacity(1024)
			UpdateQueueUtilization(3.0 / 1024.0)
			UpdateWorkerCount(4)

			Convey("Then the metrics are gatherable", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["mocap_pipeline_sequences_processed_total"], ShouldBeTrue)
				So(names["mocap_pipeline_warnings_total"], ShouldBeTrue)
				So(names["mocap_pipeline_stage_latency_milliseconds"], ShouldBeTrue)
				So(names["mocap_pipeline_worker_count"], ShouldBeTrue)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the metrics HTTP handler", t, func() {
		RecordSequenceProcessed()

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, req)

		Convey("Then it serves the scrape output", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "mocap_pipeline_sequences_processed_total"), ShouldBeTrue)
		})
	})
}
