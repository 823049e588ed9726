package commission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/outbox"
	"github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DeliveryResult reports what finalization computed for one delivered order.
type DeliveryResult struct {
	CommissionAmount int64
	Tier             enums.VendorTier
	PreviousTier     enums.VendorTier
	TierUpgraded     bool
}

// Service quotes and settles vendor commission. The amount is locked to
// the vendor's tier when the order is placed; delivery settles that stored
// amount and the delivered sale then counts toward the next tier.
type Service interface {
	Quote(totalAmount int64, tier enums.VendorTier) int64
	FinalizeDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) (*DeliveryResult, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
}

// NewService wires a commission service with the required dependencies.
func NewService(repo Repository, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: outbox}, nil
}

func (s *service) Quote(totalAmount int64, tier enums.VendorTier) int64 {
	return Compute(totalAmount, tier)
}

// FinalizeDelivery runs inside the caller's transaction alongside the
// status flip to delivered, so commission lands exactly once per order.
func (s *service) FinalizeDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) (*DeliveryResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if order == nil || order.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order missing vendor")
	}

	repo := s.repo.WithTx(tx)
	vendor, err := repo.FindVendor(ctx, order.VendorID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	// the amount was quoted and persisted at purchase time; delivery
	// settles it unchanged even if the vendor's tier moved since
	commission := order.CommissionAmount
	nextTier := NextTier(vendor.Tier, vendor.TotalSales+1)

	if err := repo.ApplyDelivery(ctx, vendor.ID, order.TotalAmount, nextTier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply delivery to vendor")
	}

	result := &DeliveryResult{
		CommissionAmount: commission,
		Tier:             nextTier,
		PreviousTier:     vendor.Tier,
		TierUpgraded:     nextTier != vendor.Tier,
	}

	if result.TierUpgraded {
		event := outbox.DomainEvent{
			EventType:     enums.EventVendorTierUpgraded,
			AggregateType: enums.AggregateVendor,
			AggregateID:   vendor.ID,
			Version:       1,
			Data: payloads.VendorTierUpgradedEvent{
				VendorID:     vendor.ID,
				PreviousTier: vendor.Tier,
				NewTier:      nextTier,
				TotalSales:   vendor.TotalSales + 1,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit tier upgrade event")
		}
	}

	return result, nil
}
