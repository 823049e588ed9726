package types

import (
	"time"

	cbigquery "cloud.google.com/go/bigquery"
)

// MarketplaceEventRow mirrors the marketplace_events BigQuery schema. Every
// analytics event lands in this one table; columns not covered by an event
// stay NULL.
type MarketplaceEventRow struct {
	EventID          string             `bigquery:"event_id"`
	EventType        string             `bigquery:"event_type"`
	OccurredAt       time.Time          `bigquery:"occurred_at"`
	OrderID          *string            `bigquery:"order_id"`
	OrderNumber      *string            `bigquery:"order_number"`
	CustomerID       *string            `bigquery:"customer_id"`
	VendorID         *string            `bigquery:"vendor_id"`
	Currency         *string            `bigquery:"currency"`
	TotalAmount      *int64             `bigquery:"total_amount"`
	CommissionAmount *int64             `bigquery:"commission_amount"`
	CommissionTier   *string            `bigquery:"commission_tier"`
	RefundAmount     *int64             `bigquery:"refund_amount"`
	ItemCount        *int64             `bigquery:"item_count"`
	Reason           *string            `bigquery:"reason"`
	Payload          cbigquery.NullJSON `bigquery:"payload"`
}
