package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"task_practice_bot/internal/app"
	"task_practice_bot/internal/domain/grading"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "task_practice_bot"

// Metrics owns a private registry so each binary (and each test) gets its own collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.SummaryVec
	httpRequests *prometheus.CounterVec

	batchRuns     *prometheus.CounterVec
	batchEntries  *prometheus.CounterVec
	batchDuration prometheus.Histogram

	gradeDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpDuration: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		batchRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grading_batches_total",
				Help:      "Grading batch runs by result",
			},
			[]string{"result"},
		),
		batchEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grading_entries_total",
				Help:      "Queue entries handled by the grading worker, by outcome",
			},
			[]string{"outcome"},
		),
		batchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grading_batch_duration_seconds",
				Help:      "Duration of one grading batch",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 240},
			},
		),
		gradeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grader_request_duration_seconds",
				Help:      "Duration of grader calls",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 45, 90},
			},
			[]string{"provider", "result"},
		),
	}
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records duration and count of every request.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		duration := time.Since(start).Seconds()
		method := ctx.Request.Method
		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(ctx.Writer.Status())

		m.httpDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		m.httpRequests.WithLabelValues(method, path, statusCode).Inc()
	}
}

// ObserveBatch records the outcome of one RunBatch call.
func (m *Metrics) ObserveBatch(r app.BatchResult, err error, d time.Duration) {
	m.batchDuration.Observe(d.Seconds())
	switch {
	case err != nil:
		m.batchRuns.WithLabelValues("error").Inc()
		return
	case r.Idle():
		m.batchRuns.WithLabelValues("idle").Inc()
	default:
		m.batchRuns.WithLabelValues("ok").Inc()
	}
	m.batchEntries.WithLabelValues("processed").Add(float64(r.Processed))
	m.batchEntries.WithLabelValues("failed").Add(float64(r.Failed))
	m.batchEntries.WithLabelValues("retried").Add(float64(r.Retried))
	m.batchEntries.WithLabelValues("skipped").Add(float64(r.Skipped))
	m.batchEntries.WithLabelValues("released").Add(float64(r.Released))
}

// InstrumentGrader wraps g so every call is timed per provider.
func (m *Metrics) InstrumentGrader(g grading.Grader) grading.Grader {
	return &instrumentedGrader{Grader: g, duration: m.gradeDuration}
}

type instrumentedGrader struct {
	grading.Grader
	duration *prometheus.HistogramVec
}

func (g *instrumentedGrader) Grade(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.Grader.Grade(ctx, prompt)
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.duration.WithLabelValues(g.Name(), result).Observe(time.Since(start).Seconds())
	return out, err
}
