package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)
			manager.snapshotPublished.Inc()

			Convey("Then its collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_snapshot_published_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording refreshes", func() {
			before := testutil.ToFloat64(globalManager.refreshFailures.WithLabelValues("users"))
			RecordRefresh("users", 12, true)
			RecordRefresh("users", 8, false)

			Convey("Then only the failed one is counted as a failure", func() {
				after := testutil.ToFloat64(globalManager.refreshFailures.WithLabelValues("users"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When updating snapshot gauges", func() {
			UpdateSnapshotSize(42, 7)

			Convey("Then the gauges reflect the snapshot", func() {
				So(testutil.ToFloat64(globalManager.snapshotEvents), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.snapshotUsers), ShouldEqual, 7)
			})
		})

		Convey("When recording cache lookups", func() {
			hits := testutil.ToFloat64(globalManager.reportCacheHits)
			misses := testutil.ToFloat64(globalManager.reportCacheMisses)
			RecordReportCache(true)
			RecordReportCache(false)
			RecordReportCache(false)

			Convey("Then hits and misses are split", func() {
				So(testutil.ToFloat64(globalManager.reportCacheHits)-hits, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.reportCacheMisses)-misses, ShouldEqual, 2)
			})
		})

		Convey("When recording through every helper", func() {
			So(func() {
				RecordRefreshRejected("rate_limited")
				RecordSnapshotPublished(1_700_000_000)
				RecordRetentionDropped(3)
				RecordReportRender(5, false)
				RecordInvalidPeriod()
				RecordHTTPRequest("users", "GET", "200", 1.5)
				RecordRateLimited("refresh_users")
				UpdateQueueSize(1)
				UpdateQueueCapacity(16)
				RecordQueueEnqueue()
				RecordQueueRejected("full")
				UpdateWorkerCount(2)
				AddWorkerBusy(1)
				AddWorkerBusy(-1)
				RecordWorkerJobLatency(3)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager reconfigured", t, func() {
		Reset(func() { Configure() })

		Convey("When a subsystem and buckets are set", func() {
			Configure(WithSubsystem("clock"), WithHistogramBuckets([]float64{5, 50, 500}))
			RecordSnapshotPublished(1_700_000_000)
			RecordReportRender(40, false)

			Convey("Then the served registry uses them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var buckets int
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
					if f.GetName() == "punchclock_clock_report_render_latency_milliseconds" {
						buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
					}
				}
				So(names["punchclock_clock_snapshot_published_total"], ShouldBeTrue)
				So(names["punchclock_attendance_snapshot_published_total"], ShouldBeFalse)
				So(buckets, ShouldEqual, 3)
			})
		})

		Convey("When collection is disabled", func() {
			Configure(WithMetricsEnabled(false))
			RecordSnapshotPublished(1_700_000_000)
			RecordRefresh("events", 3, true)

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(globalManager.snapshotPublished), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.refreshFailures.WithLabelValues("events")), ShouldEqual, 0)
			})
		})
	})
}
