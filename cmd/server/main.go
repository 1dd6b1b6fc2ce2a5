package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevin07696/subscription-service/internal/adapters/events"
	gatewayAdapter "github.com/kevin07696/subscription-service/internal/adapters/gateway"
	"github.com/kevin07696/subscription-service/internal/adapters/logging"
	"github.com/kevin07696/subscription-service/internal/adapters/postgres"
	"github.com/kevin07696/subscription-service/internal/config"
	"github.com/kevin07696/subscription-service/internal/domain"
	cronHandler "github.com/kevin07696/subscription-service/internal/handlers/cron"
	subscriptionService "github.com/kevin07696/subscription-service/internal/services/subscription"
	"github.com/kevin07696/subscription-service/pkg/observability"
	"github.com/kevin07696/subscription-service/pkg/timeutil"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting subscription service",
		zap.String("version", "0.1.0"),
	)

	dbPool, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	// Wire adapters
	logAdapter := logging.NewZapLogger(logger)
	dbExecutor := postgres.NewDBExecutor(dbPool)
	subRepo := postgres.NewSubscriptionRepository(dbExecutor)
	orderRepo := postgres.NewOrderRepository(dbExecutor)
	accounts := postgres.NewCustomerAccountService(dbExecutor, logAdapter)

	registry := gatewayAdapter.NewRegistry()
	for _, gw := range cfg.Gateways {
		features := make([]domain.GatewayFeature, 0, len(gw.Features))
		for _, f := range gw.Features {
			features = append(features, domain.GatewayFeature(f))
		}
		registry.Register(gatewayAdapter.NewStaticGateway(gw.ID, features...))
		logger.Info("Payment gateway registered",
			zap.String("gateway", gw.ID),
			zap.Int("features", len(features)),
		)
	}

	emitter := events.NewMultiEmitter(
		events.NewLogEmitter(logAdapter),
		events.NewMetricsEmitter(),
	)

	svc := subscriptionService.NewService(
		dbExecutor, subRepo, orderRepo, registry, accounts,
		emitter, timeutil.SystemClock{}, logAdapter,
	)
	if cfg.Renewal.MaxFailures > 0 {
		maxFailures := cfg.Renewal.MaxFailures
		svc.SetMaxFailuresPolicy(func(sub *domain.Subscription) bool {
			return sub.SuspensionCount >= maxFailures
		})
	}

	renewalHandler := cronHandler.NewRenewalHandler(svc, logger, cfg.Server.CronSecret)

	// HTTP server for cron endpoints
	httpMux := http.NewServeMux()
	httpMux.HandleFunc("/cron/process-renewals", renewalHandler.ProcessRenewals)
	httpMux.HandleFunc("/cron/health", renewalHandler.HealthCheck)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: httpMux,
	}

	go func() {
		logger.Info("HTTP cron server listening",
			zap.Int("port", cfg.Server.Port),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Metrics and health server
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker)
	logger.Info("Metrics server listening",
		zap.Int("port", cfg.Server.MetricsPort),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// initLogger initializes the logger from configuration
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	if cfg.Development {
		logger, _ := zap.NewDevelopment()
		return logger
	}

	zapCfg := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, _ := zapCfg.Build()
	return logger
}

// initDatabase initializes the PostgreSQL connection pool
func initDatabase(cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
		cfg.Database.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Debug("Database pool configured",
		zap.Int32("max_conns", cfg.Database.MaxConns),
		zap.Int32("min_conns", cfg.Database.MinConns),
	)

	return pool, nil
}
