package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/types"
)

// OrderItem captures one line of a purchase. Created with its parent order
// and immutable thereafter; the snapshot survives product mutation.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	UnitPrice       int64                 `gorm:"column:unit_price;not null"`
	TotalPrice      int64                 `gorm:"column:total_price;not null"`
	ProductSnapshot types.ProductSnapshot `gorm:"column:product_snapshot;type:jsonb;serializer:json"`
	StockReserved   bool                  `gorm:"column:stock_reserved;not null;default:false"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}
