package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stages used as label values.
const (
	StageCapture    = "capture"
	StageTranscribe = "transcribe"
	StageCleanup    = "cleanup"
	StageTranslate  = "translate"
	StageSave       = "save"
)

// Metrics holds the collectors for capture sessions. Each instance owns a
// private registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted  prometheus.Counter
	SessionsFinished *prometheus.CounterVec
	CapturedSeconds  prometheus.Histogram
	StageDuration    *prometheus.HistogramVec
	StageFailures    *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aslbridge_sessions_started_total",
			Help: "Total number of capture sessions started",
		}),
		SessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aslbridge_sessions_finished_total",
			Help: "Total number of capture sessions stopped, by stop reason",
		}, []string{"reason"}),
		CapturedSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aslbridge_captured_audio_seconds",
			Help:    "Duration of captured audio per session",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~1 minute
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aslbridge_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1.5 minutes
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aslbridge_stage_failures_total",
			Help: "Total number of failed pipeline stages",
		}, []string{"stage"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aslbridge_active_sessions",
			Help: "Number of sessions currently in progress",
		}),
	}
}

// RecordSessionStarted counts a new session and marks it active.
func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
	m.ActiveSessions.Inc()
}

// RecordCapture records why capture stopped and how much audio it holds.
func (m *Metrics) RecordCapture(reason string, captured time.Duration) {
	if m == nil {
		return
	}
	m.SessionsFinished.WithLabelValues(reason).Inc()
	m.CapturedSeconds.Observe(captured.Seconds())
}

// RecordStage observes a stage duration and counts it as failed when err is set.
func (m *Metrics) RecordStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

// RecordSessionDone marks a session as no longer active.
func (m *Metrics) RecordSessionDone() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
