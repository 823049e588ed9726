package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trefleapp/trefle-backend/internal/analytics"
	"github.com/trefleapp/trefle-backend/internal/analytics/types"
	analyticswriter "github.com/trefleapp/trefle-backend/internal/analytics/writer"
)

// baseRow seeds the columns shared by every marketplace event.
func baseRow(envelope types.Envelope, occurred time.Time) (types.MarketplaceEventRow, error) {
	payloadJSON, err := analyticswriter.EncodeJSON(envelope.Payload)
	if err != nil {
		return types.MarketplaceEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}
	return types.MarketplaceEventRow{
		EventID:    envelope.EventID,
		EventType:  string(envelope.EventType),
		OccurredAt: analytics.EventTimestamp(occurred, envelope.OccurredAt),
		Payload:    payloadJSON,
	}, nil
}

func stringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func uuidPtr(value uuid.UUID) *string {
	if value == uuid.Nil {
		return nil
	}
	str := value.String()
	return &str
}

func int64Ptr(value int64) *int64 {
	return &value
}
