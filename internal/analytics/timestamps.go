package analytics

import "time"

// EventTimestamp selects the event's own domain timestamp when present and
// falls back to the envelope publish time otherwise. Rows always store UTC.
func EventTimestamp(occurred, fallback time.Time) time.Time {
	if !occurred.IsZero() {
		return occurred.UTC()
	}
	return fallback.UTC()
}
