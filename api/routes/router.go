package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trefleapp/trefle-backend/api/controllers"
	ordercontrollers "github.com/trefleapp/trefle-backend/api/controllers/orders"
	webhookcontrollers "github.com/trefleapp/trefle-backend/api/controllers/webhooks"
	"github.com/trefleapp/trefle-backend/api/middleware"
	"github.com/trefleapp/trefle-backend/internal/orders"
	"github.com/trefleapp/trefle-backend/pkg/config"
	"github.com/trefleapp/trefle-backend/pkg/db"
	"github.com/trefleapp/trefle-backend/pkg/enums"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs wired in.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Orders          orders.Service
	MonerooWebhooks webhookcontrollers.MonerooWebhookService
	Metrics         prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.Healthz(cfg, logg, deps.DB, deps.Redis))
	r.Handle("/metrics", metricsHandler(deps.Metrics))

	r.Route("/api/v1", func(r chi.Router) {
		// The processor authenticates with its own signature, not a bearer token.
		r.Group(func(r chi.Router) {
			if deps.Redis != nil {
				policy := middleware.NewRateLimitPolicy("webhook",
					cfg.RateLimit.WebhookPerWindow, cfg.RateLimit.WebhookWindow)
				r.Use(middleware.RateLimit(policy, deps.Redis, logg))
			}
			r.Post("/webhooks/moneroo", webhookcontrollers.MonerooWebhook(deps.MonerooWebhooks, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordercontrollers.Create(deps.Orders, logg))
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
				r.Post("/{orderId}/reviews", ordercontrollers.CreateReview(deps.Orders, logg))
				r.With(middleware.RequireRole(string(enums.UserRoleVendor), logg)).
					Patch("/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
				r.With(middleware.RequireAnyRole(logg, string(enums.UserRoleVendor), string(enums.UserRoleAdmin))).
					Post("/{orderId}/refund", ordercontrollers.Refund(deps.Orders, logg))
			})

			r.Route("/vendors/me", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))
				r.Get("/orders", ordercontrollers.VendorList(deps.Orders, logg))
				r.Get("/stats", ordercontrollers.VendorStats(deps.Orders, logg))
			})
		})
	})

	return r
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
