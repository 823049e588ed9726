package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records processor webhook ingestion outcomes.
type WebhookMetrics struct {
	received          *prometheus.CounterVec
	signatureFailures prometheus.Counter
	duration          *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Processed webhook events by event type and outcome.",
	}, []string{"event_type", "status"})
	signatureFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_signature_failures_total",
		Help: "Webhook requests rejected for a bad signature.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_processing_seconds",
		Help:    "Webhook processing duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(received, signatureFailures, duration)
	return &WebhookMetrics{
		received:          received,
		signatureFailures: signatureFailures,
		duration:          duration,
	}
}

// IncReceived increments the outcome counter for an event type.
func (m *WebhookMetrics) IncReceived(eventType, status string) {
	if m == nil || m.received == nil {
		return
	}
	m.received.WithLabelValues(normalizeLabel(eventType), normalizeLabel(status)).Inc()
}

// IncSignatureFailure counts a rejected signature.
func (m *WebhookMetrics) IncSignatureFailure() {
	if m == nil || m.signatureFailures == nil {
		return
	}
	m.signatureFailures.Inc()
}

// ObserveDuration records how long a webhook took to process.
func (m *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// PublisherMetrics records outbox publisher throughput.
type PublisherMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	batch     prometheus.Histogram
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to Pub/Sub by event type.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed by event type.",
	}, []string{"event_type"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_seconds",
		Help:    "Outbox batch dispatch duration in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, batch)
	return &PublisherMetrics{
		published: published,
		failed:    failed,
		batch:     batch,
	}
}

// IncPublished counts a successfully published event.
func (m *PublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed counts a failed publish attempt.
func (m *PublisherMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// ObserveBatch records the duration of one dispatch pass.
func (m *PublisherMetrics) ObserveBatch(duration time.Duration) {
	if m == nil || m.batch == nil {
		return
	}
	m.batch.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
