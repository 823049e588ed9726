package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trefleapp/trefle-backend/api/routes"
	"github.com/trefleapp/trefle-backend/internal/commission"
	"github.com/trefleapp/trefle-backend/internal/inventory"
	"github.com/trefleapp/trefle-backend/internal/orders"
	moneroowebhook "github.com/trefleapp/trefle-backend/internal/webhooks/moneroo"
	"github.com/trefleapp/trefle-backend/pkg/config"
	"github.com/trefleapp/trefle-backend/pkg/db"
	"github.com/trefleapp/trefle-backend/pkg/logger"
	"github.com/trefleapp/trefle-backend/pkg/metrics"
	"github.com/trefleapp/trefle-backend/pkg/migrate"
	"github.com/trefleapp/trefle-backend/pkg/moneroo"
	"github.com/trefleapp/trefle-backend/pkg/outbox"
	"github.com/trefleapp/trefle-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	monerooClient, err := moneroo.NewClient(cfg.Moneroo)
	if err != nil {
		logg.Error(context.Background(), "failed to create moneroo client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	inventoryService, err := inventory.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	commissionService, err := commission.NewService(commission.NewRepository(dbClient.DB()), outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		outboxService,
		inventoryService,
		commissionService,
		monerooClient,
		cfg.Pricing,
		cfg.Moneroo,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	webhookGuard, err := moneroowebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.WebhookIdempotencyTTL, "webhook:moneroo")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	webhookService, err := moneroowebhook.NewService(moneroowebhook.ServiceParams{
		Repo:              moneroowebhook.NewRepository(dbClient.DB()),
		OrdersRepo:        ordersRepo,
		Orders:            ordersService,
		TransactionRunner: dbClient,
		Guard:             webhookGuard,
		Metrics:           metrics.NewWebhookMetrics(registry),
		Logger:            logg,
		WebhookSecret:     cfg.Moneroo.WebhookSecret,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Orders:          ordersService,
			MonerooWebhooks: webhookService,
			Metrics:         registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
