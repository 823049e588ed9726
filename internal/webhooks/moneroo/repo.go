package moneroowebhook

import (
	"context"

	"gorm.io/gorm"

	"github.com/trefleapp/trefle-backend/pkg/db/models"
)

// Repository persists the inbound webhook event log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKey(ctx context.Context, idempotencyKey string) (*models.WebhookEvent, error)
	Create(ctx context.Context, event *models.WebhookEvent) error
	UpdateOutcome(ctx context.Context, event *models.WebhookEvent) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a webhook event repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByKey(ctx context.Context, idempotencyKey string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", idempotencyKey).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) UpdateOutcome(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).
		Model(&models.WebhookEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"status":   event.Status,
			"result":   event.Result,
			"order_id": event.OrderID,
			"payload":  event.Payload,
		}).Error
}
