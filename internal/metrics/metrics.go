package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap/zapcore"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	logRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envrole",
			Subsystem: "logging",
			Name:      "records_total",
			Help:      "Log records handled by the pipeline, by outcome and level. Severity drops are only counted for directly submitted records.",
		},
		[]string{"outcome", "level"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envrole",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "envrole",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method"},
	)
)

func init() {
	Registry.MustRegister(
		logRecords,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// PipelineObserver counts logging pipeline outcomes.
type PipelineObserver struct{}

// Emitted counts a record that reached the sink.
func (PipelineObserver) Emitted(level zapcore.Level) {
	logRecords.WithLabelValues("emitted", levelLabel(level)).Inc()
}

// Dropped counts a record rejected by stage.
func (PipelineObserver) Dropped(stage string, level zapcore.Level) {
	logRecords.WithLabelValues("dropped_"+stage, levelLabel(level)).Inc()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

func levelLabel(level zapcore.Level) string {
	if level < zapcore.DebugLevel {
		return "trace"
	}
	return level.String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
