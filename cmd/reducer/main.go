package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/token-ledger/internal/application/services"
	"github.com/bimakw/token-ledger/internal/config"
	"github.com/bimakw/token-ledger/internal/infrastructure/cache"
	"github.com/bimakw/token-ledger/internal/infrastructure/database"
	"github.com/bimakw/token-ledger/internal/infrastructure/ethereum"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting token-ledger",
		zap.Strings("contracts", cfg.Reducer.ContractAddresses),
		zap.String("rpc_url", cfg.Ethereum.RPCURL),
		zap.String("zero_address", cfg.Reducer.ZeroAddress),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database and ensure schema
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis is an optimization, not a requirement; run without it if down
	redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, running without token cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Connect to Ethereum node
	ethClient, err := ethereum.NewClient(cfg.Ethereum, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}
	defer ethClient.Close()

	// Create repositories
	tokenRepo := database.NewTokenRepo(db.DB())
	accountRepo := database.NewAccountRepo(db.DB())
	balanceRepo := database.NewBalanceRepo(db.DB())
	allowanceRepo := database.NewAllowanceRepo(db.DB())
	transactionRepo := database.NewTransactionRepo(db.DB())
	cursorRepo := database.NewCursorRepo(db.DB())

	// Assemble the reducer
	reader := ethereum.NewContractReader(ethClient, logger)

	tokenRegistry, err := services.NewTokenRegistry(tokenRepo, reader, redisCache, cfg.Reducer.TokenCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to create token registry", zap.Error(err))
	}
	accountRegistry, err := services.NewAccountRegistry(accountRepo, cfg.Reducer.AccountCacheSize)
	if err != nil {
		logger.Fatal("Failed to create account registry", zap.Error(err))
	}

	zeroAddress := strings.ToLower(cfg.Reducer.ZeroAddress)
	reducer := services.NewReducer(
		tokenRegistry,
		accountRegistry,
		services.NewBalanceLedger(balanceRepo, zeroAddress, logger),
		services.NewAllowanceLedger(allowanceRepo),
		services.NewTransactionLog(transactionRepo, zeroAddress),
		zeroAddress,
		logger,
	)

	fetcher := ethereum.NewFetcher(ethClient, cfg.Reducer, logger)
	runner := services.NewRunner(fetcher, reducer, cursorRepo, cfg.Reducer, logger)

	runner.Start(ctx)

	// Start ops server
	opsServer := newOpsServer(cfg.Ops, db, redisCache, cursorRepo, logger)
	go func() {
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ops server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping runner...")

	runner.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Ops server shutdown failed", zap.Error(err))
	}

	logger.Info("Runner stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

// newOpsServer builds the operational HTTP server: health, metrics, and the
// runner's progress. This is not a query API over the derived entities.
func newOpsServer(
	cfg config.OpsConfig,
	db *database.PostgresDB,
	redisCache *cache.RedisCache,
	cursorRepo interface {
		GetLastBlock(ctx context.Context) (int64, error)
	},
	logger *zap.Logger,
) *http.Server {
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.HealthCheck(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if redisCache != nil {
			if err := redisCache.HealthCheck(req.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		lastBlock, err := cursorRepo.GetLastBlock(req.Context())
		if err != nil {
			http.Error(w, "failed to read cursor", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int64{"last_reduced_block": lastBlock})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info("Starting ops server", zap.String("addr", addr))

	return &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
