package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
)

func TestReserveAndRelease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, AvailableQty: 5}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(ctx, tx, product, 3)
	})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	assertLedger(t, db, product, 2, 3)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(ctx, tx, product, 2)
	})
	if err != nil {
		t.Fatalf("release: %v", err)
	}

	assertLedger(t, db, product, 4, 1)
}

func TestReserveInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, AvailableQty: 2}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(ctx, tx, product, 3)
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	// ledger untouched on failure
	assertLedger(t, db, product, 2, 0)
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(ctx, tx, uuid.New(), 1)
	})
	if err == nil {
		t.Fatal("expected error for missing ledger row")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)

	err := svc.Reserve(ctx, db, uuid.New(), 0)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCommitReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, AvailableQty: 1, ReservedQty: 4}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.CommitReservation(ctx, tx, product, 4)
	})
	if err != nil {
		t.Fatalf("commit reservation: %v", err)
	}

	assertLedger(t, db, product, 1, 0)

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.CommitReservation(ctx, tx, product, 1)
	})
	if err == nil {
		t.Fatal("expected conflict for over-commit")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, AvailableQty: 1}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Restock(ctx, tx, product, 3)
	})
	if err != nil {
		t.Fatalf("restock: %v", err)
	}

	assertLedger(t, db, product, 4, 0)
}

func TestGet(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := mustService(t, db)
	product := uuid.New()

	if err := db.Create(&models.InventoryItem{ProductID: product, AvailableQty: 7}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	item, err := svc.Get(ctx, product)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item.AvailableQty != 7 {
		t.Fatalf("unexpected item: %+v", item)
	}

	if _, err := svc.Get(ctx, uuid.New()); err == nil {
		t.Fatal("expected not found")
	}
}

func assertLedger(t *testing.T, db *gorm.DB, productID uuid.UUID, available, reserved int) {
	t.Helper()
	var item models.InventoryItem
	if err := db.First(&item, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if item.AvailableQty != available || item.ReservedQty != reserved {
		t.Fatalf("unexpected ledger state: %+v", item)
	}
}

func mustService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}); err != nil {
		t.Fatalf("migrate inventory: %v", err)
	}
	return db
}
