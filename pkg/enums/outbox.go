package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder        OutboxAggregateType = "order"
	AggregateVendor       OutboxAggregateType = "vendor"
	AggregateWebhookEvent OutboxAggregateType = "webhook_event"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateVendor,
	AggregateWebhookEvent,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated          OutboxEventType = "order_created"
	EventOrderPaid             OutboxEventType = "order_paid"
	EventOrderCanceled         OutboxEventType = "order_canceled"
	EventOrderRefunded         OutboxEventType = "order_refunded"
	EventOrderDelivered        OutboxEventType = "order_delivered"
	EventOrderDisputed         OutboxEventType = "order_disputed"
	EventOrderStateChanged     OutboxEventType = "order_state_changed"
	EventPaymentFailed         OutboxEventType = "payment_failed"
	EventVendorTierUpgraded    OutboxEventType = "vendor_tier_upgraded"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderPaid,
	EventOrderCanceled,
	EventOrderRefunded,
	EventOrderDelivered,
	EventOrderDisputed,
	EventOrderStateChanged,
	EventPaymentFailed,
	EventVendorTierUpgraded,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
