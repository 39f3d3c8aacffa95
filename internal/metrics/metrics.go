package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Calls made to the record backend",
		},
		[]string{"collection", "op", "outcome"},
	)
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of calls made to the record backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "op"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests served, by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)
	GuardRedirects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guard_redirects_total",
			Help: "Protected requests rejected for a missing or expired session",
		},
	)
	SessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Expired sessions removed by the sweeper",
		},
	)
)

func init() {
	prometheus.MustRegister(BackendRequests)
	prometheus.MustRegister(BackendLatency)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(GuardRedirects)
	prometheus.MustRegister(SessionsSwept)
}

func ObserveBackendCall(collection, op string, err error, took time.Duration) {
	BackendRequests.WithLabelValues(collection, op, outcome(err)).Inc()
	BackendLatency.WithLabelValues(collection, op).Observe(took.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "error"
}

// Middleware counts requests by chi route pattern so ids don't blow up the label set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
