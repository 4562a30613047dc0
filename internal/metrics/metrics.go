// Package metrics holds the Prometheus collectors for the portal: HTTP,
// database pool, river jobs, the realtime feed and booking activity.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	buildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build of the running binary. Always 1.",
	}, []string{"version", "commit", "build_date"})

	healthStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "check_status",
		Help:      "Last result of each /health check (0=fail, 1=warn, 2=pass).",
	}, []string{"check"})

	healthLatency = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "health",
		Name:      "check_latency_milliseconds",
		Help:      "Latency of the last run of each /health check.",
	}, []string{"check"})
)

var initOnce sync.Once

// Init registers the Go and process collectors and records the build.
// Later calls are no-ops.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		buildInfo.WithLabelValues(version, commit, buildDate).Set(1)
	})
}

var checkValues = map[string]float64{"pass": 2, "warn": 1}

// CheckValue converts a health check status to its gauge value. Anything
// unrecognised counts as a failure.
func CheckValue(status string) float64 {
	return checkValues[status]
}

// RecordHealth exports one health check result.
func RecordHealth(check, status string, latencyMs int64) {
	healthStatus.WithLabelValues(check).Set(CheckValue(status))
	healthLatency.WithLabelValues(check).Set(float64(latencyMs))
}
