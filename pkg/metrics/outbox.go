package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publish outcomes for the outbox publisher loop.
type OutboxMetrics struct {
	published    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	terminal     *prometheus.CounterVec
	batchTime    prometheus.Histogram
	pendingDepth prometheus.Gauge
}

// NewOutboxMetrics registers the outbox publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Transient outbox publish failures.",
	}, []string{"event_type"})
	terminal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_terminal_total",
		Help: "Outbox events dropped after exhausting attempts.",
	}, []string{"event_type"})
	batchTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of one outbox publish batch.",
		Buckets: prometheus.DefBuckets,
	})
	pendingDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_pending_events",
		Help: "Unpublished events seen in the last fetched batch.",
	})
	reg.MustRegister(published, failed, terminal, batchTime, pendingDepth)
	return &OutboxMetrics{
		published:    published,
		failed:       failed,
		terminal:     terminal,
		batchTime:    batchTime,
		pendingDepth: pendingDepth,
	}
}

// IncPublished increments the publish counter for the event type.
func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed increments the transient failure counter for the event type.
func (m *OutboxMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncTerminal increments the terminal drop counter for the event type.
func (m *OutboxMetrics) IncTerminal(eventType string) {
	if m == nil || m.terminal == nil {
		return
	}
	m.terminal.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveBatch records the duration of one publish batch.
func (m *OutboxMetrics) ObserveBatch(duration time.Duration) {
	if m == nil || m.batchTime == nil {
		return
	}
	m.batchTime.Observe(duration.Seconds())
}

// SetPendingDepth records the number of events in the last fetched batch.
func (m *OutboxMetrics) SetPendingDepth(count int) {
	if m == nil || m.pendingDepth == nil {
		return
	}
	m.pendingDepth.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
