package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// Product is the catalog collaborator surface the order core reads. Catalog
// management itself lives outside this service.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID       uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null;index"`
	Name           string              `gorm:"column:name;not null"`
	Status         enums.ProductStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Price          int64               `gorm:"column:price;not null"`
	Currency       enums.Currency      `gorm:"column:currency;type:text;not null;default:'XAF'"`
	WeightGrams    int                 `gorm:"column:weight_grams;not null;default:0"`
	TrackInventory bool                `gorm:"column:track_inventory;not null;default:true"`
	ImageURL       *string             `gorm:"column:image_url"`
	Inventory      *InventoryItem      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
