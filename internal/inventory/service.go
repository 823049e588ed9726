package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
)

// Service adjusts the stock ledger. Every mutation is a conditional
// single-row UPDATE executed inside the caller's transaction, so two
// concurrent orders can never reserve the same unit twice.
type Service interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	CommitReservation(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Get(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the inventory service on the shared connection. Reads
// outside a transaction use this handle; writes always use the caller's tx.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db}, nil
}

// Reserve moves qty units from available to reserved. Fails with
// INSUFFICIENT_STOCK when fewer than qty units are available; the
// conditional WHERE clause is what makes this safe under concurrency.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateAdjustment(tx, productID, qty); err != nil {
		return err
	}

	result := tx.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("product_id = ? AND available_qty >= ?", productID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty - ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty + ?", qty),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "reserve stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"product_id": productID.String(), "requested_qty": qty})
	}
	return nil
}

// Release returns qty reserved units to available stock. Used when an
// order is cancelled or a payment fails before shipment.
func (s *service) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateAdjustment(tx, productID, qty); err != nil {
		return err
	}

	result := tx.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + ?", qty),
			"reserved_qty":  gorm.Expr("reserved_qty - ?", qty),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "release stock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "reserved stock below release quantity").
			WithDetails(map[string]any{"product_id": productID.String(), "requested_qty": qty})
	}
	return nil
}

// CommitReservation burns qty reserved units when an order ships. The units
// leave the ledger entirely.
func (s *service) CommitReservation(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateAdjustment(tx, productID, qty); err != nil {
		return err
	}

	result := tx.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("product_id = ? AND reserved_qty >= ?", productID, qty).
		Updates(map[string]any{
			"reserved_qty": gorm.Expr("reserved_qty - ?", qty),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "commit reservation")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "reserved stock below commit quantity").
			WithDetails(map[string]any{"product_id": productID.String(), "requested_qty": qty})
	}
	return nil
}

// Restock adds qty units back to available stock, e.g. on a refund of
// shipped goods that were returned.
func (s *service) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if err := validateAdjustment(tx, productID, qty); err != nil {
		return err
	}

	result := tx.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"available_qty": gorm.Expr("available_qty + ?", qty),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "restock")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
			WithDetails(map[string]any{"product_id": productID.String()})
	}
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.InventoryItem, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory item")
	}
	return &item, nil
}

func validateAdjustment(tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
