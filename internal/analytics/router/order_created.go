package router

import (
	"context"
	"fmt"

	"github.com/trefleapp/trefle-backend/internal/analytics/types"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	outboxpayloads "github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

type orderCreatedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderCreatedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderCreatedHandler{writer: writer, logg: logg}
}

func (h *orderCreatedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.OrderCreatedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_created")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	row, err := baseRow(envelope, envelope.OccurredAt)
	if err != nil {
		return err
	}
	currency := string(event.Currency)
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.VendorID = uuidPtr(event.VendorID)
	row.Currency = stringPtr(currency)
	row.TotalAmount = int64Ptr(event.TotalAmount)
	row.ItemCount = int64Ptr(int64(event.ItemCount))

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert order_created row: %w", err)
	}
	h.logg.Info(logCtx, "analytics order_created recorded")
	return nil
}
