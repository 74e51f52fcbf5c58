package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/application/merchant"
	"github.com/ordersync/backend/internal/application/ordersync"
	"github.com/ordersync/backend/internal/application/report"
	"github.com/ordersync/backend/internal/infrastructure/cache"
	"github.com/ordersync/backend/internal/infrastructure/config"
	"github.com/ordersync/backend/internal/infrastructure/ecommerce"
	"github.com/ordersync/backend/internal/infrastructure/logger"
	"github.com/ordersync/backend/internal/infrastructure/persistence"
	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/infrastructure/telemetry"
	"github.com/ordersync/backend/internal/interfaces/http/handler"
	"github.com/ordersync/backend/internal/interfaces/http/middleware"
	"github.com/ordersync/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Order Sync API
//	@version		1.0
//	@description	Shopify order ingestion, order reads and merchant revenue summaries.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting order sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Metrics
	metricsRegistry := telemetry.NewRegistry(cfg.Metrics.Namespace)
	syncMetrics, err := telemetry.NewSyncMetrics(metricsRegistry)
	if err != nil {
		log.Fatal("Failed to register sync metrics", zap.Error(err))
	}
	if cfg.Metrics.Enabled {
		dbMetrics, err := telemetry.NewDBMetrics(metricsRegistry, telemetry.DefaultDBMetricsConfig())
		if err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
			log.Fatal("Failed to install database metrics plugin", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			if err := telemetry.RegisterPoolStats(metricsRegistry, sqlDB, cfg.Database.DBName); err != nil {
				log.Warn("Failed to register connection pool metrics", zap.Error(err))
			}
		}
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	merchantRepo := persistence.NewGormMerchantRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRepository(db.DB)

	// Revenue cache
	cacheFactory := cache.NewRevenueCacheFactory(cfg.Redis, cfg.Cache, cache.WithLogger(log))
	revenueCache, cacheCloser, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create revenue cache", zap.Error(err))
	}
	defer func() {
		if err := cacheCloser.Close(); err != nil {
			log.Error("Error closing revenue cache", zap.Error(err))
		}
	}()

	// Shopify source
	shopifyCfg := ecommerce.ShopifyConfig{
		APIKey:            cfg.Shopify.APIKey,
		APISecret:         cfg.Shopify.APISecret,
		APIVersion:        cfg.Shopify.APIVersion,
		PageSize:          cfg.Shopify.PageSize,
		LineItemsPerOrder: cfg.Shopify.LineItemsPerOrder,
		PageDelay:         cfg.Shopify.PageDelay,
		MaxRetries:        cfg.Shopify.MaxRetries,
		RequestTimeout:    cfg.Shopify.RequestTimeout,
	}
	orderSource, err := ecommerce.NewShopifyOrderSource(
		shopifyCfg,
		ecommerce.NewGoShopifyQuerierFactory(shopifyCfg),
		log.Named("shopify"),
	)
	if err != nil {
		log.Fatal("Invalid Shopify configuration", zap.Error(err))
	}

	// Application services
	reportService := report.NewReportService(merchantRepo, revenueRepo, revenueCache, log.Named("report"))
	merchantService := merchant.NewMerchantService(merchantRepo, log.Named("merchant"))
	syncService := ordersync.NewService(
		orderSource,
		orderRepo,
		credentialRepo,
		ordersync.Config{
			ItemConcurrency: cfg.Sync.ItemConcurrency,
			RecentDays:      cfg.Sync.RecentDays,
		},
		log.Named("ordersync"),
		ordersync.WithObserver(syncMetrics),
		ordersync.WithObserver(reportService),
	)

	// Scheduler
	var (
		syncScheduler   *scheduler.OrderSyncScheduler
		schedulerStatus handler.SchedulerStatus
		passRunner      handler.PassRunner
	)
	if cfg.Scheduler.Enabled {
		syncScheduler, err = scheduler.NewOrderSyncScheduler(
			scheduler.OrderSyncSchedulerConfig{
				CronSchedule: cfg.Scheduler.CronSchedule,
				Location:     cfg.Scheduler.Location(),
				Window:       cfg.Scheduler.Window,
				RunTimeout:   cfg.Scheduler.RunTimeout,
				RunOnStartup: cfg.Scheduler.RunOnStartup,
			},
			syncService,
			log.Named("scheduler"),
			scheduler.WithTickRecorder(syncMetrics),
		)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := syncScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start order sync scheduler", zap.Error(err))
		}
		schedulerStatus, passRunner = syncScheduler, syncScheduler
		log.Info("Order sync scheduler started",
			zap.String("schedule", cfg.Scheduler.CronSchedule),
			zap.String("timezone", cfg.Scheduler.Timezone),
			zap.Duration("window", cfg.Scheduler.Window),
			zap.Time("next_run", syncScheduler.NextRun()),
		)
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Registry:  metricsRegistry,
		Enabled:   cfg.Metrics.Enabled,
		SkipPaths: []string{cfg.Metrics.Path, "/health"},
	})
	if err != nil {
		log.Fatal("Failed to register HTTP metrics", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Order matters: request ID first so recovery and access logs carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(httpMetrics)
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db, schedulerStatus)
	engine.GET("/health", systemHandler.Health)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metricsRegistry.Handler()))
	}

	orderHandler := handler.NewOrderHandler(orderRepo)
	revenueHandler := handler.NewRevenueHandler(reportService)
	merchantHandler := handler.NewMerchantHandler(merchantService)
	syncHandler := handler.NewSyncHandler(syncService, passRunner, cfg.Scheduler.Window)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	orderRoutes := router.NewDomainGroup("orders", "/orders").
		Use(middleware.Timeout(cfg.HTTP.ReadTimeout))
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/last", orderHandler.GetLast)
	orderRoutes.GET("/shopify/*shopifyOrderId", orderHandler.GetByShopifyID)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.GET("/:id/items", orderHandler.ListItems)

	merchantRoutes := router.NewDomainGroup("merchants", "/merchants").
		Use(middleware.Timeout(cfg.HTTP.ReadTimeout))
	merchantRoutes.GET("", merchantHandler.List)
	merchantRoutes.GET("/revenue", revenueHandler.GetTotalRevenue)
	merchantRoutes.GET("/revenue/breakdown", revenueHandler.ListMerchantRevenue)
	merchantRoutes.GET("/shopify/*shopifyId", merchantHandler.GetByShopifyID)
	merchantRoutes.GET("/:id", merchantHandler.GetByID)
	merchantRoutes.GET("/:id/revenue", revenueHandler.GetRevenue)

	// Manual syncs run as long as the remote needs; no request timeout here
	syncRoutes := router.NewDomainGroup("sync", "/sync")
	syncRoutes.POST("/credentials/:id", syncHandler.SyncCredential)
	syncRoutes.POST("/merchants/:id", syncHandler.SyncMerchant)
	syncRoutes.POST("/run", syncHandler.SyncAll)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(orderRoutes).
		Register(merchantRoutes).
		Register(syncRoutes).
		Register(systemRoutes)
	r.Setup()

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Error("Order sync scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	cancelRoot()

	log.Info("Server exited gracefully")
}
