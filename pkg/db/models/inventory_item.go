package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the stock ledger row for one product. Adjustments happen
// only through conditional single-row UPDATEs so concurrent orders never oversell.
type InventoryItem struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	ReservedQty  int       `gorm:"column:reserved_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
