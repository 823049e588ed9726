package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/trefleapp/trefle-backend/api/responses"
	pkgerrors "github.com/trefleapp/trefle-backend/pkg/errors"
	"github.com/trefleapp/trefle-backend/pkg/logger"
)

type rateLimitStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy defines the throttling parameters for a traffic surface.
type RateLimitPolicy struct {
	name   string
	limit  int64
	window time.Duration
}

// NewRateLimitPolicy builds a per-IP fixed-window policy.
func NewRateLimitPolicy(name string, limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		limit:  int64(limit),
		window: window,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.limit > 0 && p.window > 0
}

func (p RateLimitPolicy) scope(ip string) string {
	name := p.name
	if name == "" {
		name = "default"
	}
	return name + ":" + ip
}

// RateLimit enforces a per-IP fixed-window counter on the wrapped routes.
// A zero policy or missing store leaves the chain untouched.
func RateLimit(policy RateLimitPolicy, store rateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(ip), policy.limit, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"policy":         policy.name,
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "rate_limit.blocked")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
