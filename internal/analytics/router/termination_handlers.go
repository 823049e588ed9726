package router

import (
	"context"
	"fmt"

	"github.com/trefleapp/trefle-backend/internal/analytics/types"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	outboxpayloads "github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

type orderCanceledHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderCanceledHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderCanceledHandler{writer: writer, logg: logg}
}

func (h *orderCanceledHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.OrderCanceledEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_canceled")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	row, err := baseRow(envelope, event.CanceledAt)
	if err != nil {
		return err
	}
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.VendorID = uuidPtr(event.VendorID)
	row.Reason = stringPtr(event.Reason)

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert order_canceled row: %w", err)
	}
	h.logg.Info(logCtx, "analytics order_canceled recorded")
	return nil
}

type orderRefundedHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderRefundedHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderRefundedHandler{writer: writer, logg: logg}
}

func (h *orderRefundedHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.OrderRefundedEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_refunded")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	row, err := baseRow(envelope, event.RefundedAt)
	if err != nil {
		return err
	}
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.VendorID = uuidPtr(event.VendorID)
	row.RefundAmount = int64Ptr(event.RefundAmount)

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert order_refunded row: %w", err)
	}
	h.logg.Info(logCtx, "analytics order_refunded recorded")
	return nil
}

type orderDeliveredHandler struct {
	writer Writer
	logg   *logger.Logger
}

func newOrderDeliveredHandler(writer Writer, logg *logger.Logger) Handler {
	return &orderDeliveredHandler{writer: writer, logg: logg}
}

func (h *orderDeliveredHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	event, ok := payload.(*outboxpayloads.OrderDeliveredEvent)
	if !ok {
		return fmt.Errorf("invalid payload for order_delivered")
	}
	logCtx := h.logg.WithFields(ctx, map[string]any{
		"event_type": envelope.EventType,
		"order_id":   event.OrderID,
	})

	row, err := baseRow(envelope, event.DeliveredAt)
	if err != nil {
		return err
	}
	tier := string(event.CommissionTier)
	row.OrderID = uuidPtr(event.OrderID)
	row.OrderNumber = stringPtr(event.OrderNumber)
	row.CustomerID = uuidPtr(event.CustomerID)
	row.VendorID = uuidPtr(event.VendorID)
	row.TotalAmount = int64Ptr(event.TotalAmount)
	row.CommissionAmount = int64Ptr(event.CommissionAmount)
	row.CommissionTier = stringPtr(tier)

	if err := h.writer.Insert(logCtx, row); err != nil {
		return fmt.Errorf("insert order_delivered row: %w", err)
	}
	h.logg.Info(logCtx, "analytics order_delivered recorded")
	return nil
}
