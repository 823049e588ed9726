package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderReview is the single customer review attached to a delivered order.
// The unique index on order_id enforces once-per-order at the database level.
type OrderReview struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	VendorID   uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Title      string    `gorm:"column:title;not null"`
	Content    string    `gorm:"column:content;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
