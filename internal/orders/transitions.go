package orders

import (
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
)

// allowedTransitions is the single source of truth for the order lifecycle.
// Delivered, cancelled and refunded are terminal and have no outgoing edges.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusCancelled,
		enums.OrderStatusPaymentFailed,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
		enums.OrderStatusDisputed,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusRefunded,
		enums.OrderStatusDisputed,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusRefunded,
		enums.OrderStatusDisputed,
	},
	enums.OrderStatusPaymentFailed: {
		enums.OrderStatusConfirmed,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusDisputed: {
		enums.OrderStatusRefunded,
		enums.OrderStatusCancelled,
	},
}

// CanTransition reports whether the lifecycle permits moving from one
// status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a coded error naming both states when the
// move is not allowed.
func ValidateTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(to)})
	}
	if CanTransition(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}

// vendorTransitions are the lifecycle moves a vendor may drive directly.
var vendorTransitions = map[enums.OrderStatus]bool{
	enums.OrderStatusProcessing: true,
	enums.OrderStatusShipped:    true,
	enums.OrderStatusDelivered:  true,
}

// VendorMayRequest reports whether the target status is vendor-drivable.
// Payment-derived statuses only ever move through the webhook pipeline.
func VendorMayRequest(to enums.OrderStatus) bool {
	return vendorTransitions[to]
}

// notifiableStatuses are the lifecycle entries that fan out a customer
// notification through the outbox.
var notifiableStatuses = map[enums.OrderStatus]bool{
	enums.OrderStatusConfirmed:     true,
	enums.OrderStatusShipped:       true,
	enums.OrderStatusDelivered:     true,
	enums.OrderStatusCancelled:     true,
	enums.OrderStatusRefunded:      true,
	enums.OrderStatusPaymentFailed: true,
}

// ShouldNotify reports whether entering the status warrants alerting the
// customer.
func ShouldNotify(to enums.OrderStatus) bool {
	return notifiableStatuses[to]
}
