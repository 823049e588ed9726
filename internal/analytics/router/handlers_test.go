package router

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trefleapp/trefle-backend/pkg/enums"
	outboxpayloads "github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

func TestOrderPaidRowUsesPaidTimestamp(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	paidAt := time.Date(2026, time.August, 28, 14, 30, 0, 0, time.UTC)
	envelope := envelopeFor(t, enums.AnalyticsEventOrderPaid, outboxpayloads.OrderPaidEvent{
		OrderID:     uuid.New(),
		OrderNumber: "TRF-20260828-XXXXXX",
		CustomerID:  uuid.New(),
		VendorID:    uuid.New(),
		TotalAmount: 120925,
		PaidAt:      paidAt,
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)
	assert.Equal(t, paidAt, writer.inserted[0].OccurredAt)
	require.NotNil(t, writer.inserted[0].TotalAmount)
	assert.EqualValues(t, 120925, *writer.inserted[0].TotalAmount)
}

func TestPaymentFailedRowCarriesReason(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	envelope := envelopeFor(t, enums.AnalyticsEventPaymentFailed, outboxpayloads.PaymentFailedEvent{
		OrderID: uuid.New(),
		Reason:  "card declined",
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)
	require.NotNil(t, writer.inserted[0].Reason)
	assert.Equal(t, "card declined", *writer.inserted[0].Reason)
	assert.Nil(t, writer.inserted[0].VendorID)
}

func TestOrderRefundedRowCarriesRefundAmount(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	refundedAt := time.Date(2026, time.August, 29, 8, 0, 0, 0, time.UTC)
	envelope := envelopeFor(t, enums.AnalyticsEventOrderRefunded, outboxpayloads.OrderRefundedEvent{
		OrderID:      uuid.New(),
		VendorID:     uuid.New(),
		RefundAmount: 54663,
		RefundedAt:   refundedAt,
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)
	require.NotNil(t, writer.inserted[0].RefundAmount)
	assert.EqualValues(t, 54663, *writer.inserted[0].RefundAmount)
	assert.Equal(t, refundedAt, writer.inserted[0].OccurredAt)
}

func TestOrderDeliveredRowCarriesCommission(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	envelope := envelopeFor(t, enums.AnalyticsEventOrderDelivered, outboxpayloads.OrderDeliveredEvent{
		OrderID:          uuid.New(),
		VendorID:         uuid.New(),
		TotalAmount:      100000,
		CommissionAmount: 4500,
		CommissionTier:   enums.VendorTierBronze,
		DeliveredAt:      time.Now().UTC(),
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)
	require.NotNil(t, writer.inserted[0].CommissionAmount)
	assert.EqualValues(t, 4500, *writer.inserted[0].CommissionAmount)
	require.NotNil(t, writer.inserted[0].CommissionTier)
	assert.Equal(t, "bronze", *writer.inserted[0].CommissionTier)
}

func TestOrderCanceledRowFallsBackToEnvelopeTime(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	envelope := envelopeFor(t, enums.AnalyticsEventOrderCanceled, outboxpayloads.OrderCanceledEvent{
		OrderID: uuid.New(),
		Reason:  "customer request",
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)
	assert.Equal(t, envelope.OccurredAt, writer.inserted[0].OccurredAt)
}
