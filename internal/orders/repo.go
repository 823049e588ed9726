package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	"github.com/trefleapp/trefle-backend/pkg/types"
)

// ListParams bounds paged order queries.
type ListParams struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

// StatusCount is one row of the vendor stats aggregation.
type StatusCount struct {
	Status enums.OrderStatus `gorm:"column:status"`
	Count  int64             `gorm:"column:count"`
}

// Repository manages persistence for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params ListParams) ([]models.Order, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params ListParams) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error)
	SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error
	MarkItemsReleased(ctx context.Context, orderID uuid.UUID) error
	FindProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
	CreateReview(ctx context.Context, review *models.OrderReview) error
	CountByStatus(ctx context.Context, vendorID uuid.UUID) ([]StatusCount, error)
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	IncrementVendorRating(ctx context.Context, vendorID uuid.UUID, rating int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Review").
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_reference = ?", reference).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params ListParams) ([]models.Order, error) {
	return r.list(ctx, "customer_id = ?", customerID, params)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, params ListParams) ([]models.Order, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, params)
}

func (r *repository) list(ctx context.Context, cond string, id uuid.UUID, params ListParams) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where(cond, id).
		Order("created_at DESC")
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus flips the status only when the row still holds the expected
// previous status. Returning false means another writer won the race.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_reference", reference).Error
}

// MarkItemsReleased clears the reservation flag after stock goes back.
func (r *repository) MarkItemsReleased(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("stock_reserved", false).Error
}

func (r *repository) FindProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateReview(ctx context.Context, review *models.OrderReview) error {
	return r.db.WithContext(ctx).Create(review).Error
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

// IncrementVendorRating bumps the star bucket for a freshly accepted review.
func (r *repository) IncrementVendorRating(ctx context.Context, vendorID uuid.UUID, rating int) error {
	vendor, err := r.FindVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	ratings := vendor.Ratings
	if ratings == nil {
		ratings = types.Ratings{}
	}
	ratings[strconv.Itoa(rating)]++
	return r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Update("ratings", ratings).Error
}

func (r *repository) CountByStatus(ctx context.Context, vendorID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	if err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("vendor_id = ?", vendorID).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
