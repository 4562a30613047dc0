package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

func riverCounter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "river", Name: name, Help: help,
	}, labels)
}

var (
	RiverJobsQueued = riverCounter("jobs_queued_total", "Jobs inserted, by kind.", "kind")

	// RiverJobsCompleted counts finished attempts; result is success or error.
	RiverJobsCompleted = riverCounter("jobs_completed_total", "Job attempts that finished, by kind and result.", "kind", "result")

	// RiverJobFailures counts errored attempts; final is "true" once the
	// job has no attempts left.
	RiverJobFailures = riverCounter("job_failures_total", "Job attempts that returned an error or panicked.", "kind", "final")

	RiverJobsInFlight = promauto.With(Registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "river", Name: "jobs_in_flight",
		Help: "Jobs executing right now, by kind.",
	}, []string{"kind"})

	RiverJobDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "river", Name: "job_duration_seconds",
		Help:    "Time from attempt start to completion, by kind.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"kind"})
)

// RiverMetricsHook records queue and execution metrics for every job.
type RiverMetricsHook struct {
	river.HookDefaults
	now func() time.Time
}

func NewRiverMetricsHook() *RiverMetricsHook {
	return &RiverMetricsHook{now: time.Now}
}

func (h *RiverMetricsHook) InsertBegin(ctx context.Context, params *rivertype.JobInsertParams) error {
	RiverJobsQueued.WithLabelValues(params.Kind).Inc()
	return nil
}

func (h *RiverMetricsHook) WorkBegin(ctx context.Context, job *rivertype.JobRow) error {
	RiverJobsInFlight.WithLabelValues(job.Kind).Inc()
	return nil
}

// WorkEnd measures from the attempt start river stamps on the row, so the
// hook keeps no per-job state.
func (h *RiverMetricsHook) WorkEnd(ctx context.Context, job *rivertype.JobRow, err error) error {
	RiverJobsInFlight.WithLabelValues(job.Kind).Dec()
	if started := job.AttemptedAt; started != nil {
		RiverJobDuration.WithLabelValues(job.Kind).Observe(h.now().Sub(*started).Seconds())
	}
	RiverJobsCompleted.WithLabelValues(job.Kind, outcome(err)).Inc()
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordJobFailure matches the job alert callback signature.
func RecordJobFailure(_ context.Context, job *rivertype.JobRow, _ error, final bool) {
	RiverJobFailures.WithLabelValues(job.Kind, strconv.FormatBool(final)).Inc()
}
