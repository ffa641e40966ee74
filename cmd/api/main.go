package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/gscube/bulkerpay/internal/domain/port/persistence"
	paymentUseCase "github.com/gscube/bulkerpay/internal/domain/usecase/payment"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/handler"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/api/routes"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/cache"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/database"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/logger"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/paystack"
	"github.com/gscube/bulkerpay/internal/infrastructure/adapter/repository"
	timeProvider "github.com/gscube/bulkerpay/internal/infrastructure/adapter/time"
	"github.com/gscube/bulkerpay/internal/infrastructure/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	tp := timeProvider.NewRealTimeProvider()

	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}

	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer dbManager.Close()

	if err := database.Migrate(dbManager.DB(), appLogger); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	transactionRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	creditRepo := repository.NewCreditRepository(dbManager.DB(), tp, appLogger)
	notificationRepo := repository.NewNotificationRepository(dbManager.DB(), appLogger)
	uow := database.NewUnitOfWork(dbManager.DB(), appLogger, tp)

	gateway := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, appLogger)

	// The verification cache is optional; without Redis every verify falls
	// through to the store, which stays correct.
	var verificationCache persistence.VerificationCache = cache.NewNoop()
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(context.Background(), cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without verification cache", map[string]any{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		} else {
			defer redisCache.Close()
			verificationCache = redisCache
		}
	}

	paymentService := paymentUseCase.NewService(
		gateway,
		uow,
		transactionRepo,
		creditRepo,
		notificationRepo,
		verificationCache,
		tp,
		appLogger,
		cfg.Gateway.CallbackURL,
	)

	paymentHandler := handler.NewPaymentHandler(paymentService, appLogger)
	creditHandler := handler.NewCreditHandler(paymentService, appLogger)

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, paymentHandler, creditHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Gateway.SecretKey == "" {
		missingConfigs = append(missingConfigs, "gateway.secretKey (or PAYSTACK_SECRET_KEY environment variable)")
	}
	if cfg.Gateway.CallbackURL == "" {
		missingConfigs = append(missingConfigs, "gateway.callbackUrl")
	}

	if cfg.Database.Driver == "postgres" {
		if cfg.Database.Host == "" {
			missingConfigs = append(missingConfigs, "database.host (or BULKERPAY_DB_HOST environment variable)")
		}
		if cfg.Database.Username == "" {
			missingConfigs = append(missingConfigs, "database.username (or BULKERPAY_DB_USERNAME environment variable)")
		}
		if cfg.Database.Password == "" {
			missingConfigs = append(missingConfigs, "database.password (or BULKERPAY_DB_PASSWORD environment variable)")
		}
	}
	if cfg.Database.Database == "" {
		missingConfigs = append(missingConfigs, "database.database (or BULKERPAY_DB_NAME environment variable)")
	}

	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	return nil
}
