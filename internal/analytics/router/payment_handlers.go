package router

import (
	"context"
	"fmt"

	"github.com/trefleapp/trefle-backend/internal/analytics/types"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	outboxpayloads "github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

type orderPaidHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderPaidHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderPaidHandler{writer: writer, logg: logg}
}

func (h *orderPaidHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.OrderPaidEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_paid")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	// revenue is attributed to the moment the charge settled
	row, err := baseRow(envelope, event.PaidAt)
	if err != nil {
		return err
	}
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.VendorID = uuidPtr(event.VendorID)
	row.TotalAmount = int64Ptr(event.TotalAmount)

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert order_paid row: %w", err)
	}
	h.logg.Info(logCtx, "analytics order_paid recorded")
	return nil
}

type paymentFailedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newPaymentFailedHandler(writer Writer, logg *logger.Logger) Handler {
	return &paymentFailedHandler{writer: writer, logg: logg}
}

func (h *paymentFailedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.PaymentFailedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for payment_failed")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	row, err := baseRow(envelope, envelope.OccurredAt)
	if err != nil {
		return err
	}
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.Reason = stringPtr(event.Reason)

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert payment_failed row: %w", err)
	}
	h.logg.Info(logCtx, "analytics payment_failed recorded")
	return nil
}
