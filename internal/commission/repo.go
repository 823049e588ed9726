package commission

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// Repository manages persistence for vendor commission state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	ApplyDelivery(ctx context.Context, vendorID uuid.UUID, revenue int64, tier enums.VendorTier) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a commission repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).
		Where("id = ?", vendorID).
		First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) ApplyDelivery(ctx context.Context, vendorID uuid.UUID, revenue int64, tier enums.VendorTier) error {
	return r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Updates(map[string]any{
			"total_sales":   gorm.Expr("total_sales + 1"),
			"total_revenue": gorm.Expr("total_revenue + ?", revenue),
			"tier":          tier,
		}).Error
}
