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

	"github.com/angelmondragon/threadline-backend/internal/cron"
	"github.com/angelmondragon/threadline-backend/internal/orders"
	"github.com/angelmondragon/threadline-backend/pkg/config"
	"github.com/angelmondragon/threadline-backend/pkg/db"
	"github.com/angelmondragon/threadline-backend/pkg/instance"
	"github.com/angelmondragon/threadline-backend/pkg/logger"
	"github.com/angelmondragon/threadline-backend/pkg/metrics"
	"github.com/angelmondragon/threadline-backend/pkg/outbox"
	"github.com/angelmondragon/threadline-backend/pkg/redis"
)

const metricsAddrEnv = "CRON_METRICS_ADDR"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dbClient *db.Client
	if cfg.FeatureFlags.UseSQLite {
		dbClient, err = db.NewSQLite(ctx, cfg.DB.SQLitePath, logg)
	} else {
		dbClient, err = db.New(ctx, cfg.DB, logg)
	}
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	jobMetrics := metrics.NewJobs(registry)

	sweeper, err := orders.NewClaimSweeper(orders.SweeperOptions{
		Repo:     orders.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Outbox:   outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Logger:   logg,
		ClaimTTL: 2 * cfg.Payments.GatewayTimeout,
	})
	if err != nil {
		return err
	}
	sweepJob, err := cron.NewClaimSweepJob(sweeper)
	if err != nil {
		return err
	}
	jobs, err := cron.NewRegistry(sweepJob)
	if err != nil {
		return err
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}
	scheduler, err := cron.NewScheduler(cron.SchedulerParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	if addr := os.Getenv(metricsAddrEnv); addr != "" {
		server := &http.Server{Addr: addr, Handler: metrics.Handler(registry), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server failed", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"interval": cfg.Cron.Interval.String(),
		"instance": instance.ID(),
	})
	logg.Info(logCtx, "cron worker started")
	return scheduler.Run(ctx)
}
