package enums

import "fmt"

// AnalyticsEventType is the canonical event_type for analytics routing.
type AnalyticsEventType string

const (
	AnalyticsEventOrderCreated   AnalyticsEventType = "order_created"
	AnalyticsEventOrderPaid      AnalyticsEventType = "order_paid"
	AnalyticsEventOrderCanceled  AnalyticsEventType = "order_canceled"
	AnalyticsEventOrderRefunded  AnalyticsEventType = "order_refunded"
	AnalyticsEventOrderDelivered AnalyticsEventType = "order_delivered"
	AnalyticsEventPaymentFailed  AnalyticsEventType = "payment_failed"
)

var validAnalyticsEventTypes = []AnalyticsEventType{
	AnalyticsEventOrderCreated,
	AnalyticsEventOrderPaid,
	AnalyticsEventOrderCanceled,
	AnalyticsEventOrderRefunded,
	AnalyticsEventOrderDelivered,
	AnalyticsEventPaymentFailed,
}

// IsValid reports whether the value matches the canonical analytics event_type enum.
func (a AnalyticsEventType) IsValid() bool {
	for _, candidate := range validAnalyticsEventTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAnalyticsEventType converts the raw string to AnalyticsEventType.
func ParseAnalyticsEventType(value string) (AnalyticsEventType, error) {
	for _, candidate := range validAnalyticsEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid analytics event type %q", value)
}
