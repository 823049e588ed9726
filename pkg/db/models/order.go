package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
	"github.com/trefleapp/trefle-backend/pkg/types"
)

// Order is the aggregate root of a customer's purchase from one vendor.
// Rows are never deleted; terminal statuses end the lifecycle.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID         uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	VendorID           uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;index"`
	Status             enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Currency           enums.Currency      `gorm:"column:currency;type:text;not null;default:'XAF'"`
	Subtotal           int64               `gorm:"column:subtotal;not null"`
	TaxAmount          int64               `gorm:"column:tax_amount;not null;default:0"`
	ShippingAmount     int64               `gorm:"column:shipping_amount;not null;default:0"`
	TotalAmount        int64               `gorm:"column:total_amount;not null"`
	CommissionAmount   int64               `gorm:"column:commission_amount;not null;default:0"`
	PaymentReference   *string             `gorm:"column:payment_reference;index"`
	ShippingAddress    types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress     *types.Address      `gorm:"column:billing_address;type:jsonb;serializer:json"`
	Notes              *string             `gorm:"column:notes"`
	CancellationReason *string             `gorm:"column:cancellation_reason"`
	ConfirmedAt        *time.Time          `gorm:"column:confirmed_at"`
	ShippedAt          *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt        *time.Time          `gorm:"column:delivered_at"`
	CancelledAt        *time.Time          `gorm:"column:cancelled_at"`
	RefundedAt         *time.Time          `gorm:"column:refunded_at"`
	Items              []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Review             *OrderReview        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
