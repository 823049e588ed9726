package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/pkg/enums"
)

// WebhookEvent is the append-only log of inbound payment-provider events.
// The unique idempotency key is what makes at-least-once delivery safe:
// a key recorded with status success or ignored is never applied again.
type WebhookEvent struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Source           string                   `gorm:"column:source;not null"`
	EventType        string                   `gorm:"column:event_type;not null"`
	IdempotencyKey   string                   `gorm:"column:idempotency_key;not null;uniqueIndex"`
	PaymentReference *string                  `gorm:"column:payment_reference"`
	OrderID          *uuid.UUID               `gorm:"column:order_id;type:uuid;index"`
	Payload          json.RawMessage          `gorm:"column:payload;type:jsonb;not null"`
	Status           enums.WebhookEventStatus `gorm:"column:status;type:text;not null"`
	Result           string                   `gorm:"column:result;not null;default:''"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
}
