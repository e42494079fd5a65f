// cmd/careers-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"careers-backend/internal/candidatures/aggregate"
	"careers-backend/internal/candidatures/lifecycle"
	"careers-backend/internal/candidatures/storage"
	"careers-backend/internal/common/aws"
	"careers-backend/internal/common/config"
	"careers-backend/internal/common/database"
	"careers-backend/internal/common/logger"
	"careers-backend/internal/common/observability"
	"careers-backend/internal/contact"
	"careers-backend/internal/httpapi"
	"careers-backend/internal/notify"
	"careers-backend/internal/openings"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting careers server...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (openings cache, optional) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, openings cache disabled", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Mail transport ---
	var mail notify.MailTransport
	switch cfg.Mail.Provider {
	case "ses":
		sesClient, err := aws.NewSESClient(ctx, cfg.Mail.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		mail = notify.NewSESTransport(sesClient, cfg.Mail.Sender)
	case "smtp":
		mail = notify.NewSMTPTransport(cfg.Mail)
	default:
		zapLog.Fatal("unknown mail provider", zap.String("provider", cfg.Mail.Provider))
	}

	// --- Notification dispatcher ---
	var dispatcher lifecycle.Dispatcher = lifecycle.NopDispatcher{}
	var asyncDispatcher *notify.AsyncDispatcher
	if cfg.Notifications.EmailEnabled {
		opts := notify.Options{
			Company:   cfg.App.Name,
			QueueSize: cfg.Notifications.QueueSize,
		}
		if cfg.Notifications.SMSEnabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNSRegion)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
			opts.SMS = notify.NewSNSSMSSender(snsClient)
		}
		asyncDispatcher = notify.NewAsyncDispatcher(mail, opts, log)
		dispatcher = asyncDispatcher
	}

	// --- Core services ---
	registry := storage.NewRegistry(
		storage.NewEmploiPartition(pg.DB),
		storage.NewStagePartition(pg.DB),
		storage.NewSpontaneePartition(pg.DB),
	)
	aggregator := aggregate.NewService(registry, aggregate.Config{
		PartitionTimeout: time.Duration(cfg.Aggregation.PartitionTimeout) * time.Millisecond,
	}, log)
	controller := lifecycle.NewController(registry, dispatcher, log)
	openingsSvc := openings.NewService(
		openings.NewStore(pg.DB), redis,
		time.Duration(cfg.Database.Redis.TTL)*time.Second, log,
	)
	contactSvc := contact.NewService(pg.DB, mail, cfg.Notifications.HRRecipient, log)

	server := httpapi.NewServer(httpapi.Deps{
		Aggregator:    aggregator,
		Lifecycle:     controller,
		Registry:      registry,
		Openings:      openingsSvc,
		Contact:       contactSvc,
		DB:            pg.DB,
		Observability: obs,
		Logger:        log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if asyncDispatcher != nil {
		if err := asyncDispatcher.Close(shutdownCtx); err != nil {
			zapLog.Error("notification dispatcher drain failed", zap.Error(err))
		}
	}

	zapLog.Info("Careers server stopped gracefully")
}
