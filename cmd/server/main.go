package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/pharmapos/backend/internal/application/catalog"
	inventoryapp "github.com/pharmapos/backend/internal/application/inventory"
	reportapp "github.com/pharmapos/backend/internal/application/report"
	tradeapp "github.com/pharmapos/backend/internal/application/trade"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/domain/shared/strategy"
	"github.com/pharmapos/backend/internal/domain/trade"
	"github.com/pharmapos/backend/internal/infrastructure/cache"
	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/infrastructure/persistence"
	"github.com/pharmapos/backend/internal/infrastructure/strategy/cost"
	"github.com/pharmapos/backend/internal/interfaces/http/handler"
	"github.com/pharmapos/backend/internal/interfaces/http/middleware"
	"github.com/pharmapos/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting PharmaPOS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Availability cache. Redis is preferred so every till sees the same
	// read model; a single-node deployment can run without it.
	var availCache inventoryapp.AvailabilityCache
	redisCache, err := cache.NewRedisAvailabilityCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-process availability cache", zap.Error(err))
		availCache = cache.NewInMemoryAvailabilityCache(cfg.Redis.TTL)
	} else {
		defer func() {
			_ = redisCache.Close()
		}()
		availCache = redisCache
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormStockBatchRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	costStrategy, err := cost.NewCostStrategy(strategy.CostMethod(cfg.Inventory.CostMethod))
	if err != nil {
		log.Fatal("Failed to initialize cost strategy", zap.Error(err))
	}

	// Application services
	clock := shared.SystemClock{}
	productService := catalogapp.NewProductService(productRepo, log)
	ledgerService := inventoryapp.NewLedgerService(
		batchRepo, productRepo, availCache, clock, cfg.Inventory.ExpiryHorizonDays, log)
	saleService := tradeapp.NewSaleService(txScope, productRepo, availCache, clock, tradeapp.SaleConfig{
		ReceiptPrefix: cfg.Sales.ReceiptPrefix,
		SequencePad:   cfg.Sales.SequencePad,
	}, log)
	returnService := tradeapp.NewReturnService(txScope, availCache, clock, tradeapp.ReturnConfig{
		Window:        cfg.Sales.ReturnWindow,
		RestockPolicy: trade.RestockPolicy(cfg.Sales.RestockPolicy),
	}, log)
	reportService := reportapp.NewReportService(saleRepo, costStrategy, clock, log)

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	router.NewRouter(engine).
		Register(handler.NewSystemHandler(db)).
		Register(handler.NewProductHandler(productService)).
		Register(handler.NewInventoryHandler(ledgerService)).
		Register(handler.NewSaleHandler(saleService)).
		Register(handler.NewSalesReturnHandler(returnService)).
		Register(handler.NewReportHandler(reportService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
