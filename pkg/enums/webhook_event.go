package enums

import "fmt"

// WebhookEventStatus is the recorded processing outcome of an inbound
// provider event.
type WebhookEventStatus string

const (
	WebhookEventStatusSuccess WebhookEventStatus = "success"
	WebhookEventStatusIgnored WebhookEventStatus = "ignored"
	WebhookEventStatusError   WebhookEventStatus = "error"
)

var validWebhookEventStatuses = []WebhookEventStatus{
	WebhookEventStatusSuccess,
	WebhookEventStatusIgnored,
	WebhookEventStatusError,
}

// String implements fmt.Stringer.
func (w WebhookEventStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WebhookEventStatus.
func (w WebhookEventStatus) IsValid() bool {
	for _, candidate := range validWebhookEventStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWebhookEventStatus converts raw input into a WebhookEventStatus.
func ParseWebhookEventStatus(value string) (WebhookEventStatus, error) {
	for _, candidate := range validWebhookEventStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook event status %q", value)
}
