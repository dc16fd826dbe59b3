package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storepay/internal/bootstrap"
	"storepay/internal/config"
	"storepay/internal/middleware"
	"storepay/internal/notify"
	"storepay/internal/payment"
	"storepay/internal/repository"
	"storepay/internal/router"
	"storepay/internal/telemetry"
)

func main() {
	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger, err := telemetry.NewLogger(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Tracing ---
	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	catalog := repository.NewProductRepository(db)

	// --- Payment gateway ---
	var gateway payment.Gateway
	flw, err := payment.NewFlutterwaveClient(cfg.Gateway, cfg.Checkout, logger)
	if err != nil {
		logger.Warn("Payment gateway disabled", zap.Error(err))
	} else {
		gateway = flw
	}
	if cfg.Gateway.SecretHash == "" {
		logger.Warn("FLW_SECRET_HASH is not set, webhook signatures are not enforced; do not run production like this")
	}

	// --- Webhook Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewEventDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.Redis.DedupTTL,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Notifiers ---
	var notifiers []notify.Notifier
	var kafkaNotifier *notify.Kafka
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier, err = notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn("Kafka notifier disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, kafkaNotifier)
		}
	}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, "")
		if err != nil {
			logger.Warn("Telegram notifier disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Routes ---
	waitNotifications := router.Setup(e, router.Deps{
		Config:   cfg,
		Catalog:  catalog,
		Gateway:  gateway,
		Deduper:  deduper,
		Notifier: notify.Combine(notifiers...),
		Logger:   logger,
	})

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting storepay server",
			zap.String("addr", addr),
			zap.Bool("gateway_configured", gateway != nil),
		)
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	// Webhook notifications outlive their requests; drain before closing writers.
	if err := waitNotifications(shutdownCtx); err != nil {
		logger.Warn("Pending notifications abandoned", zap.Error(err))
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Warn("Kafka writer close failed", zap.Error(err))
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Tracing shutdown failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and sample catalog completed")
	return nil
}
