package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWebhookMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWebhookMetrics(reg)
	metrics.IncReceived("payment.completed", "success")
	metrics.IncReceived("payment.completed", "ignored")
	metrics.IncSignatureFailure()
	metrics.ObserveDuration("payment.completed", 30*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "webhook_events_total", "status", "success"); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "webhook_events_total", "status", "ignored"); err != nil {
		t.Fatalf("fetch ignored: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ignored=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "webhook_processing_seconds", "event_type", "payment.completed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestPublisherMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPublisherMetrics(reg)
	metrics.IncPublished("order_created")
	metrics.IncFailed("order_created")
	metrics.ObserveBatch(120 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_published_total", "event_type", "order_created"); err != nil {
		t.Fatalf("fetch published: %v", err)
	} else if got != 1 {
		t.Fatalf("expected published=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_events_failed_total", "event_type", "order_created"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	webhook := NewWebhookMetrics(nil)
	webhook.IncReceived("payment.completed", "success")
	webhook.IncSignatureFailure()
	webhook.ObserveDuration("payment.completed", time.Millisecond)

	publisher := NewPublisherMetrics(nil)
	publisher.IncPublished("order_created")
	publisher.IncFailed("order_created")
	publisher.ObserveBatch(time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
