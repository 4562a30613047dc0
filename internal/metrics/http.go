package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "Requests served, by status code, method and route pattern.",
	}, []string{"code", "method", "route"})

	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "Time to the last byte of the response.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})

	HTTPResponseSize = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "response_size_bytes",
		Help:    "Response body size.",
		Buckets: prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "route"})

	HTTPRequestsInFlight = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
		Help: "Requests being served right now.",
	})
)

// unmatchedRoute labels requests no route claimed, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

type routeKey struct{}

type routeLabel struct{ pattern string }

// SetRoute records the mux pattern that served the request. The router
// calls it once the pattern is known.
func SetRoute(ctx context.Context, pattern string) {
	if label, ok := ctx.Value(routeKey{}).(*routeLabel); ok && pattern != "" {
		label.pattern = pattern
	}
}

func routeFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(routeKey{}).(*routeLabel); ok {
		return label.pattern
	}
	return unmatchedRoute
}

// HTTPMiddleware records request count, latency and response size per
// route pattern. The route label is read after next returns, so SetRoute
// may be called anywhere below it.
func HTTPMiddleware(next http.Handler) http.Handler {
	byRoute := promhttp.WithLabelFromCtx("route", routeFromContext)
	instrumented := promhttp.InstrumentHandlerInFlight(HTTPRequestsInFlight,
		promhttp.InstrumentHandlerCounter(HTTPRequestsTotal,
			promhttp.InstrumentHandlerDuration(HTTPRequestDuration,
				promhttp.InstrumentHandlerResponseSize(HTTPResponseSize, next, byRoute),
				byRoute),
			byRoute))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), routeKey{}, &routeLabel{pattern: unmatchedRoute})
		instrumented.ServeHTTP(w, r.WithContext(ctx))
	})
}
