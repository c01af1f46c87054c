package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository/postgres"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	internalworker "github.com/saaabeeer7719-creator/sehatech-full-system/internal/worker"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	redisbroker "github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging/redis"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/worker"
)

// workerConfig is read from the environment so the worker can run as a
// standalone container without a config file mount.
type workerConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	HealthPort int `envconfig:"HEALTH_PORT" default:"8081"`

	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxMaxRetries   int           `envconfig:"OUTBOX_MAX_RETRIES" default:"5"`
	OutboxRetryBackoff time.Duration `envconfig:"OUTBOX_RETRY_BACKOFF" default:"30s"`
	OutboxRetention    time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`

	AuditRetention  time.Duration `envconfig:"AUDIT_RETENTION" default:"2160h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
}

func main() {
	var cfg workerConfig
	if err := envconfig.Process("sehatech", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	appLogger := &logger.Logger{ZL: log.Logger}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		appLogger.ZL.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.New("sehatech_worker")
	auditSvc := audit.NewService(auditRepo, userRepo, appLogger)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.OutboxBatchSize,
		PollInterval: cfg.OutboxPollInterval,
		MaxRetries:   cfg.OutboxMaxRetries,
		RetryBackoff: cfg.OutboxRetryBackoff,
	}, appLogger, m)

	reconciler := internalworker.NewBillingReconciler(broker, &baseRepo, transactionRepo, appLogger, m)

	setupHealthCheck(appLogger, cfg.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.ZL.Info().Msg("shutting down...")
		cancel()
	}()

	go func() {
		if err := reconciler.Start(ctx); err != nil {
			appLogger.ZL.Error().Err(err).Msg("billing reconciler stopped")
		}
	}()

	go runCleanup(ctx, cfg, processor, auditSvc, appLogger)

	processor.Start(ctx)
}

// runCleanup prunes processed outbox events and expired audit entries on a
// fixed interval.
func runCleanup(ctx context.Context, cfg workerConfig, processor *worker.OutboxProcessor, auditSvc *audit.Service, appLogger *logger.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := processor.Cleanup(ctx, cfg.OutboxRetention); err != nil {
				appLogger.ZL.Error().Err(err).Msg("outbox cleanup failed")
			}
			if _, err := auditSvc.Cleanup(ctx, cfg.AuditRetention); err != nil {
				appLogger.ZL.Error().Err(err).Msg("audit cleanup failed")
			}
		}
	}
}

func setupHealthCheck(appLogger *logger.Logger, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		addr := fmt.Sprintf(":%d", port)
		appLogger.ZL.Info().Str("addr", addr).Msg("health check listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
		}
	}()
}
