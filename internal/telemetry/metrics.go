package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "config_resolutions_total",
		Help: "Config value resolutions by outcome (DEFAULT or RULE_MATCH)",
	}, []string{"reason"})

	ruleRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rule_validation_rejections_total",
		Help: "Rule writes rejected by validation, by error kind",
	}, []string{"kind"})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, resolutions, ruleRejections)
}

// ObserveResolution records one resolve outcome.
func ObserveResolution(reason string) {
	resolutions.WithLabelValues(reason).Inc()
}

// ObserveRuleRejection records one rejected rule write.
func ObserveRuleRejection(kind string) {
	ruleRejections.WithLabelValues(kind).Inc()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
