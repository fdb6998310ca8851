package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/threadline-backend/api/routes"
	"github.com/angelmondragon/threadline-backend/internal/catalog"
	"github.com/angelmondragon/threadline-backend/internal/checkout"
	"github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/internal/payments"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/migrate"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
	"github.com/angelmondragon/threadline-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

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
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := openDatabase(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commerce := metrics.NewCommerce(registry)

	gateway, err := payments.New(ctx, cfg, commerce, logg)
	if err != nil {
		return err
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogService, err := catalog.NewService(catalogRepo, dbClient, events, logg)
	if err != nil {
		return err
	}
	engine, err := checkout.NewEngine(catalogRepo, cfg.Storefront, commerce, logg)
	if err != nil {
		return err
	}
	ordersService, err := orders.NewService(orders.Options{
		Repo:     orders.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Outbox:   events,
		Gateway:  gateway,
		Pricer:   engine,
		Stock:    catalogRepo,
		Metrics:  commerce,
		Logger:   logg,
		ClaimTTL: 2 * cfg.Payments.GatewayTimeout,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:          dbClient,
		Redis:       redisClient,
		Idempotency: redisClient,
		RateLimiter: redisClient,
		Gatherer:    registry,
		Pricer:      engine,
		Orders:      ordersService,
		Catalog:     catalogService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"provider": string(gateway.Provider()),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*db.Client, error) {
	if cfg.FeatureFlags.UseSQLite {
		return db.NewSQLite(ctx, cfg.DB.SQLitePath, logg)
	}
	return db.New(ctx, cfg.DB, logg)
}
