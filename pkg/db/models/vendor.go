package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
	"github.com/trefleapp/trefle-backend/pkg/types"
)

// Vendor carries the commission-relevant state of a seller. TotalSales and
// TotalRevenue only ever grow, and Tier never moves down the ladder.
type Vendor struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName  string           `gorm:"column:display_name;not null"`
	Country      string           `gorm:"column:country;not null;default:'CM'"`
	Tier         enums.VendorTier `gorm:"column:tier;type:text;not null;default:'bronze'"`
	TotalSales   int64            `gorm:"column:total_sales;not null;default:0"`
	TotalRevenue int64            `gorm:"column:total_revenue;not null;default:0"`
	Ratings      types.Ratings    `gorm:"column:ratings;type:jsonb"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
