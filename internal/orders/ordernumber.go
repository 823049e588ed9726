package orders

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const orderNumberSuffixLen = 6

var orderNumberAlphabet = []byte("23456789ABCDEFGHJKMNPQRSTUVWXYZ")

// NewOrderNumber returns a customer-facing order reference like
// TRF-20260828-K4Q7ZM. Uniqueness is enforced by the database index;
// callers retry on collision.
func NewOrderNumber(prefix string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "TRF"
	}

	suffix := make([]byte, orderNumberSuffixLen)
	random := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(random); err != nil {
		// fall back to the clock; the unique index still guards collisions
		for i := range random {
			random[i] = byte(now.UnixNano() >> (i * 8))
		}
	}
	for i, b := range random {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), string(suffix))
}
