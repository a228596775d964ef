package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityCreatedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "planner_service",
		Subsystem: "persistence",
		Name:      "last_activity_created_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	statusRecordedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "planner_service",
		Subsystem: "persistence",
		Name:      "last_status_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent status record appended to the ledger.",
	})
	statusMarksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner_service",
		Subsystem: "ledger",
		Name:      "status_marks_total",
		Help:      "Number of status records appended, labeled by resulting status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(activityCreatedGauge, statusRecordedGauge, statusMarksCounter)
}

// RecordActivityCreated updates the persistence watermark gauge.
func RecordActivityCreated(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityCreatedGauge.Set(float64(ts.Unix()))
}

// RecordStatusMark updates the ledger watermark gauge and per-status counter.
func RecordStatusMark(status string, ts time.Time) {
	statusMarksCounter.WithLabelValues(status).Inc()
	if ts.IsZero() {
		return
	}
	statusRecordedGauge.Set(float64(ts.Unix()))
}
