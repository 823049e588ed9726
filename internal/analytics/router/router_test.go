package router

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trefleapp/trefle-backend/internal/analytics/types"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	outboxpayloads "github.com/trefleapp/trefle-backend/pkg/outbox/payloads"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "router-test"})
}

func envelopeFor(t *testing.T, eventType enums.AnalyticsEventType, payload any) types.Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return types.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.NewString(),
		OccurredAt:    time.Date(2026, time.August, 28, 9, 0, 0, 0, time.UTC),
		Payload:       raw,
	}
}

func TestRouterDispatchesOrderCreated(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	router, err := NewRouter(writer, testLogger(), nil)
	require.NoError(t, err)

	orderID := uuid.New()
	envelope := envelopeFor(t, enums.AnalyticsEventOrderCreated, outboxpayloads.OrderCreatedEvent{
		OrderID:     orderID,
		OrderNumber: "TRF-20260828-K4Q7ZM",
		CustomerID:  uuid.New(),
		VendorID:    uuid.New(),
		Currency:    enums.CurrencyXAF,
		TotalAmount: 54663,
		ItemCount:   2,
	})

	require.NoError(t, router.Handle(context.Background(), envelope))
	require.Len(t, writer.inserted, 1)

	row := writer.inserted[0]
	assert.Equal(t, envelope.EventID, row.EventID)
	assert.Equal(t, "order_created", row.EventType)
	require.NotNil(t, row.OrderID)
	assert.Equal(t, orderID.String(), *row.OrderID)
	require.NotNil(t, row.TotalAmount)
	assert.EqualValues(t, 54663, *row.TotalAmount)
	require.NotNil(t, row.ItemCount)
	assert.EqualValues(t, 2, *row.ItemCount)
	assert.True(t, row.Payload.Valid)
}

func TestRouterRejectsUnsupportedEvent(t *testing.T) {
	t.Parallel()

	router, err := NewRouter(&fakeWriter{}, testLogger(), nil)
	require.NoError(t, err)

	envelope := types.Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.AnalyticsEventType("ad_impression"),
		Payload:   json.RawMessage(`{}`),
	}
	err = router.Handle(context.Background(), envelope)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEventType))
}

func TestRouterRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	router, err := NewRouter(&fakeWriter{}, testLogger(), nil)
	require.NoError(t, err)

	envelope := types.Envelope{
		EventID:   uuid.NewString(),
		EventType: enums.AnalyticsEventOrderPaid,
	}
	require.Error(t, router.Handle(context.Background(), envelope))
}

type captureHandler struct {
	called bool
}

func (h *captureHandler) Handle(ctx context.Context, envelope types.Envelope, payload any) error {
	h.called = true
	return nil
}

func TestRouterHonorsOverrides(t *testing.T) {
	t.Parallel()

	custom := &captureHandler{}
	router, err := NewRouter(&fakeWriter{}, testLogger(), map[enums.AnalyticsEventType]Handler{
		enums.AnalyticsEventOrderPaid: custom,
	})
	require.NoError(t, err)

	envelope := envelopeFor(t, enums.AnalyticsEventOrderPaid, outboxpayloads.OrderPaidEvent{
		OrderID: uuid.New(),
		PaidAt:  time.Now().UTC(),
	})
	require.NoError(t, router.Handle(context.Background(), envelope))
	assert.True(t, custom.called)
}
