package moneroowebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trefleapp/trefle-backend/pkg/redis"
)

// IdempotencyGuard is the Redis fast path in front of the durable
// webhook_events log. A guard miss is never fatal; the unique key on the
// log row is what actually enforces exactly-once application.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark reports whether the key was already marked and marks it
// otherwise.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventKey string) (bool, error) {
	if eventKey == "" {
		return false, errors.New("event key is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventKey)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete clears a mark so a failed event can be retried.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventKey string) error {
	if eventKey == "" {
		return errors.New("event key is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventKey)
	return g.store.Del(ctx, key)
}
