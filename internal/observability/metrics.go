package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/llm"
)

// Metrics holds the service collectors. It implements interview.Observer.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TurnsTotal   *prometheus.CounterVec
	TurnDuration *prometheus.HistogramVec
	RetriesTotal *prometheus.CounterVec

	InterviewsRecorded *prometheus.CounterVec
	ScoreHistogram     prometheus.Histogram
}

var _ interview.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"route", "method"},
		),
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_turns_total",
				Help: "Chat turns handled by mode, phase and outcome",
			},
			[]string{"mode", "phase", "outcome"},
		),
		TurnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "interview_turn_duration_seconds",
				Help:    "Wall time of a chat turn including gateway retries",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"mode"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_retries_total",
				Help: "Gateway retries after a rate limited attempt",
			},
			[]string{"reason"},
		),
		InterviewsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interviews_recorded_total",
				Help: "Completed interviews persisted by category",
			},
			[]string{"category", "score_source"},
		),
		ScoreHistogram: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "interview_score",
				Help:    "Distribution of recorded interview scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TurnsTotal,
		m.TurnDuration,
		m.RetriesTotal,
		m.InterviewsRecorded,
		m.ScoreHistogram,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TurnHandled implements interview.Observer.
func (m *Metrics) TurnHandled(mode interview.Mode, phase string, outcome string, elapsed time.Duration) {
	if phase == "" {
		phase = "none"
	}
	label := string(mode)
	if label == "" {
		label = "unknown"
	}
	m.TurnsTotal.WithLabelValues(label, phase, outcome).Inc()
	if outcome == interview.OutcomeOK || outcome == interview.OutcomeRateLimited || outcome == interview.OutcomeError {
		m.TurnDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// InterviewRecorded implements interview.Observer.
func (m *Metrics) InterviewRecorded(category interview.Category, score int, scoreFound bool) {
	source := "default"
	if scoreFound {
		source = "feedback"
	}
	m.InterviewsRecorded.WithLabelValues(string(category), source).Inc()
	m.ScoreHistogram.Observe(float64(score))
}

// ObserveRetry matches llm.RetryConfig.OnRetry.
func (m *Metrics) ObserveRetry(_ int, _ time.Duration, err error) {
	reason := "other"
	if errors.Is(err, llm.ErrRateLimited) {
		reason = "rate_limited"
	}
	m.RetriesTotal.WithLabelValues(reason).Inc()
}

// HTTPMiddleware records request counts and latency per chi route pattern.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
