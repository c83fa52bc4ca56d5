package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	inventoryapp "github.com/erp/inventory/internal/application/inventory"
	locationapp "github.com/erp/inventory/internal/application/location"
	partnerapp "github.com/erp/inventory/internal/application/partner"
	"github.com/erp/inventory/internal/domain/inventory"
	"github.com/erp/inventory/internal/domain/location"
	"github.com/erp/inventory/internal/infrastructure/auth"
	"github.com/erp/inventory/internal/infrastructure/cache"
	"github.com/erp/inventory/internal/infrastructure/config"
	"github.com/erp/inventory/internal/infrastructure/event"
	"github.com/erp/inventory/internal/infrastructure/logger"
	"github.com/erp/inventory/internal/infrastructure/migration"
	"github.com/erp/inventory/internal/infrastructure/persistence"
	"github.com/erp/inventory/internal/infrastructure/scheduler"
	"github.com/erp/inventory/internal/infrastructure/telemetry"
	"github.com/erp/inventory/internal/interfaces/http/handler"
	"github.com/erp/inventory/internal/interfaces/http/middleware"
	"github.com/erp/inventory/internal/interfaces/http/router"
	"github.com/erp/inventory/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Log export is set up first so the bridged core can be handed to logger.New
	bootLog, err := logger.New(logConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log, err := logger.New(logConfig(cfg),
		telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracingConfig := telemetry.DefaultDBTracingConfig()
	dbTracingConfig.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracingConfig.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracingConfig.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	dbTracing := telemetry.NewDBTracingPlugin(dbTracingConfig, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if meterProvider.IsEnabled() {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to access connection pool", zap.Error(err))
		}
		dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("inventory/db"), sqlDB, cfg.Telemetry.DBSlowQueryThresh, log)
		if err != nil {
			log.Fatal("Failed to create database metrics", zap.Error(err))
		}
		if err := dbMetrics.Register(db.DB); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		defer dbMetrics.Stop()
	}

	if cfg.Database.AutoMigrate {
		runMigrations(db, log)
	}

	// Redis backs transaction numbering and bulk idempotency when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Repositories
	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	txRepo := persistence.NewGormInventoryTransactionRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)

	// Event bus
	eventSerializer := event.NewEventSerializer()
	event.RegisterInventoryEvents(eventSerializer)
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(eventSerializer, log))
	stockAlertHandler := inventoryapp.NewStockBelowMinimumHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
	eventBus.Subscribe(stockAlertHandler)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	inventoryService := inventoryapp.NewInventoryService(itemRepo, txRepo, locationRepo, supplierRepo,
		persistence.NewGormTransactionScope(db.DB), serviceConfig(cfg.Engine))
	inventoryService.SetLogger(log)
	inventoryService.SetEventPublisher(eventBus)
	inventoryService.SetIdempotencyStore(idempotencyStore)
	if cfg.Engine.SequenceBackend == config.SequenceBackendRedis {
		inventoryService.SetSequenceSource(cache.NewRedisSequencer(redisClient, ""))
		log.Info("Transaction numbers issued from Redis")
	}

	if meterProvider.IsEnabled() {
		inventoryMetrics, err := telemetry.NewInventoryMetrics(telemetry.InventoryMetricsConfig{
			Meter:    meterProvider.Meter("inventory/engine"),
			Logger:   log,
			Provider: telemetry.NewGormStockHealthProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create inventory metrics", zap.Error(err))
		}
		inventoryMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer inventoryMetrics.Stop()
		inventoryService.SetInventoryMetrics(inventoryMetrics)
	}

	locationService := locationapp.NewLocationService(locationRepo, itemRepo, location.HierarchyConfig{
		MaxDepth:      cfg.Engine.MaxLocationDepth,
		HopLimit:      cfg.Engine.HierarchyHopLimit,
		Compatibility: location.DefaultCompatibility(),
	})
	locationService.SetLogger(log)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	supplierService.SetLogger(log)

	// Reorder scan
	if cfg.Scheduler.ReorderScanEnabled {
		scanService := inventoryapp.NewReorderScanService(itemRepo, inventoryService, eventBus, log)
		reorderScheduler, err := scheduler.NewReorderScanScheduler(cfg.Scheduler, scanService, log)
		if err != nil {
			log.Fatal("Failed to create reorder scan scheduler", zap.Error(err))
		}
		if err := reorderScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reorder scan scheduler", zap.Error(err))
		}
		defer func() {
			if err := reorderScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping reorder scan scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:          cfg.HTTP,
		Logger:        log,
		JWTService:    auth.NewJWTService(cfg.JWT),
		MeterProvider: meterProvider,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		RateLimiter: rateLimiter,
		Health:      handler.NewHealthHandler(db, cfg.App.Version),
		Handlers: router.Handlers{
			Items:        handler.NewItemHandler(inventoryService),
			Transactions: handler.NewTransactionHandler(inventoryService),
			Locations:    handler.NewLocationHandler(locationService, inventoryService),
			Suppliers:    handler.NewSupplierHandler(supplierService),
			Barcodes:     handler.NewBarcodeHandler(inventoryapp.NewBarcodeService(nil)),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func logConfig(cfg *config.Config) *logger.Config {
	lc := logger.ConfigForEnvironment(cfg.App.Env)
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		lc.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		lc.Output = cfg.Log.Output
	}
	lc.Service = cfg.App.Name
	lc.Version = cfg.App.Version
	return lc
}

// serviceConfig translates the engine limits into the inventory service configuration
func serviceConfig(e config.EngineConfig) inventoryapp.ServiceConfig {
	sc := inventoryapp.DefaultServiceConfig()
	sc.Rules.MaxReceiptQuantity = e.MaxReceiptQuantity
	sc.Rules.AdjustmentCeiling = e.AdjustmentCeiling
	sc.Rules.BulkAdjustmentCeiling = e.BulkAdjustmentCeiling
	sc.Rules.MaxBatchSize = e.MaxBatchSize
	for role, limit := range e.ApprovalLimits {
		sc.Rules.ApprovalLimits[inventory.ApprovalRole(strings.ToUpper(role))] = limit
	}
	sc.ReorderWindowDays = e.ReorderWindowDays
	sc.ReorderSafetyFactor = e.ReorderSafetyFactor
	sc.IdempotencyTTL = e.IdempotencyTTL
	return sc
}

func runMigrations(db *persistence.Database, log *zap.Logger) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	migrator, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		log.Warn("Could not read migration version", zap.Error(err))
		return
	}
	log.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func shutdownTelemetry(log *zap.Logger, tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
