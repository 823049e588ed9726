package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once the order and its stock reservations
// commit together.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID      `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	CustomerID  uuid.UUID      `json:"customer_id"`
	VendorID    uuid.UUID      `json:"vendor_id"`
	Currency    enums.Currency `json:"currency"`
	TotalAmount int64          `json:"total_amount"`
	ItemCount   int            `json:"item_count"`
}

// OrderPaidEvent is emitted when a payment success webhook confirms an order.
type OrderPaidEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	CustomerID       uuid.UUID `json:"customer_id"`
	VendorID         uuid.UUID `json:"vendor_id"`
	PaymentReference string    `json:"payment_reference"`
	TotalAmount      int64     `json:"total_amount"`
	PaidAt           time.Time `json:"paid_at"`
}

// PaymentFailedEvent is emitted when the processor reports a failed charge.
type PaymentFailedEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	CustomerID       uuid.UUID `json:"customer_id"`
	PaymentReference string    `json:"payment_reference"`
	Reason           string    `json:"reason,omitempty"`
}

// OrderCanceledEvent is emitted when an order is canceled and its
// reservations released.
type OrderCanceledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	CanceledAt  time.Time `json:"canceled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// OrderRefundedEvent is emitted when a refund settles.
type OrderRefundedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	VendorID     uuid.UUID `json:"vendor_id"`
	RefundAmount int64     `json:"refund_amount"`
	RefundedAt   time.Time `json:"refunded_at"`
}

// OrderDeliveredEvent carries the finalized commission figures computed on
// delivery.
type OrderDeliveredEvent struct {
	OrderID          uuid.UUID        `json:"order_id"`
	OrderNumber      string           `json:"order_number"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	VendorID         uuid.UUID        `json:"vendor_id"`
	TotalAmount      int64            `json:"total_amount"`
	CommissionAmount int64            `json:"commission_amount"`
	CommissionTier   enums.VendorTier `json:"commission_tier"`
	DeliveredAt      time.Time        `json:"delivered_at"`
}

// OrderDisputedEvent is emitted when a payment dispute freezes an order.
type OrderDisputedEvent struct {
	OrderID          uuid.UUID `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	VendorID         uuid.UUID `json:"vendor_id"`
	PaymentReference string    `json:"payment_reference"`
	DisputedAt       time.Time `json:"disputed_at"`
}

// OrderStateChangedEvent is the generic audit record for every transition.
type OrderStateChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	FromStatus enums.OrderStatus `json:"from_status"`
	ToStatus   enums.OrderStatus `json:"to_status"`
	ChangedAt  time.Time         `json:"changed_at"`
}

// VendorTierUpgradedEvent is emitted when delivered sales push a vendor
// into a better commission tier.
type VendorTierUpgradedEvent struct {
	VendorID     uuid.UUID        `json:"vendor_id"`
	PreviousTier enums.VendorTier `json:"previous_tier"`
	NewTier      enums.VendorTier `json:"new_tier"`
	TotalSales   int64            `json:"total_sales"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	VendorID   uuid.UUID `json:"vendor_id"`
	Type       string    `json:"type"`
}
