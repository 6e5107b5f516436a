package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	cartapp "github.com/zambezimeats/backend/internal/application/cart"
	catalogapp "github.com/zambezimeats/backend/internal/application/catalog"
	deliveryapp "github.com/zambezimeats/backend/internal/application/delivery"
	eventapp "github.com/zambezimeats/backend/internal/application/event"
	identityapp "github.com/zambezimeats/backend/internal/application/identity"
	inventoryapp "github.com/zambezimeats/backend/internal/application/inventory"
	orderapp "github.com/zambezimeats/backend/internal/application/order"
	promotionapp "github.com/zambezimeats/backend/internal/application/promotion"
	reportapp "github.com/zambezimeats/backend/internal/application/report"
	settingsapp "github.com/zambezimeats/backend/internal/application/settings"
	"github.com/zambezimeats/backend/internal/domain/order"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/auth"
	"github.com/zambezimeats/backend/internal/infrastructure/cache"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
	"github.com/zambezimeats/backend/internal/infrastructure/event"
	"github.com/zambezimeats/backend/internal/infrastructure/logger"
	"github.com/zambezimeats/backend/internal/infrastructure/payment"
	"github.com/zambezimeats/backend/internal/infrastructure/persistence"
	"github.com/zambezimeats/backend/internal/infrastructure/printing"
	"github.com/zambezimeats/backend/internal/infrastructure/sanitize"
	"github.com/zambezimeats/backend/internal/infrastructure/scheduler"
	"github.com/zambezimeats/backend/internal/infrastructure/storage"
	"github.com/zambezimeats/backend/internal/infrastructure/telemetry"
	"github.com/zambezimeats/backend/internal/interfaces/http/handler"
	"github.com/zambezimeats/backend/internal/interfaces/http/middleware"
	"github.com/zambezimeats/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	lowStockGaugePeriod = 5 * time.Minute
	webhookRateLimit    = 120
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry starts before the main logger so the OTLP log bridge can be
	// attached as an extra core. Until then the boot logger reports.
	bootLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	signals, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		ServiceName: cfg.Telemetry.ServiceName,
	}, signals.LogCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()
	defer shutdown(log, "telemetry", signals.Shutdown)

	log.Info("Starting Zambezi Meats API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	location := cfg.App.Location()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.Open(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	// Redis backs token revocation, webhook idempotency, rate limits and the
	// settings cache. Outside production the process falls back to memory.
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.App.IsProduction() {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-process stores", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
	}

	var (
		blacklist   auth.TokenBlacklist
		idempotency shared.IdempotencyStore
	)
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		idempotency = cache.NewRedisIdempotencyStore(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		idempotency = cache.NewInMemoryIdempotencyStore()
	}

	settingsCache := cache.NewSettingsCache(redisClient, cfg.Store.SettingsCacheTTL, log)
	go settingsCache.Listen(ctx)

	// External services
	mediaStorage, err := storage.NewS3Storage(ctx, cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var gateway order.PaymentGateway
	stripeGateway, err := payment.NewStripeGateway(cfg.Stripe, payment.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}
	if stripeGateway != nil {
		gateway = stripeGateway
	} else {
		log.Warn("Stripe is not configured; card payments are disabled")
	}

	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load report templates", zap.Error(err))
	}
	renderer := printing.NewChromedpRenderer(cfg.PDF, log)
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	exporter := printing.NewReportExporter(templates, renderer)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	zoneRepo := persistence.NewGormZoneRepository(db.DB)
	proofRepo := persistence.NewGormProofRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	settingsService := settingsapp.NewSettingsService(settingRepo, settingsCache, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, eventBus, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Store.LoginMaxAttempts,
		LockDuration:     cfg.Store.LoginLockDuration,
	}, log)
	userService := identityapp.NewUserService(userRepo, jwtService, blacklist, log)
	addressService := identityapp.NewAddressService(addressRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, eventBus, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, mediaStorage, sanitize.New(), eventBus, log)
	imageService := catalogapp.NewImageService(productRepo, mediaStorage, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, cfg.Store.CartMaxLines, log)
	promotionService := promotionapp.NewPromotionService(promotionRepo, cartService, log)
	zoneService := deliveryapp.NewZoneService(zoneRepo, log)
	deliveryService := deliveryapp.NewDeliveryService(orderRepo, proofRepo, txScope, mediaStorage, eventBus, log)
	checkoutService := orderapp.NewCheckoutService(orderapp.CheckoutDeps{
		Carts:      cartRepo,
		Products:   productRepo,
		Addresses:  addressRepo,
		Users:      userRepo,
		Zones:      zoneRepo,
		Promotions: promotionRepo,
		Settings:   settingsService,
		Tx:         txScope,
		Gateway:    gateway,
		Events:     eventBus,
	}, orderapp.CheckoutOptions{
		OrderNumberPrefix: cfg.Store.OrderNumberPrefix,
		Location:          location,
	}, log)
	orderService := orderapp.NewOrderService(orderapp.OrderDeps{
		Orders:   orderRepo,
		Payments: paymentRepo,
		Users:    userRepo,
		Proofs:   deliveryService,
		Settings: settingsService,
		Tx:       txScope,
		Gateway:  gateway,
		Events:   eventBus,
		Location: location,
	}, log)
	webhookService := orderapp.NewWebhookService(gateway, paymentRepo, txScope, idempotency, eventBus, log)
	inventoryService := inventoryapp.NewInventoryService(productRepo, movementRepo, txScope, eventBus, location, log)
	reportService := reportapp.NewReportService(reportRepo, exporter, settingsService, location, log)

	// Event handlers
	businessMetrics, err := telemetry.NewBusinessMetrics(signals.Meter(cfg.Telemetry.ServiceName), log)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	businessMetrics.StartLowStockCollection(ctx, reportRepo, lowStockGaugePeriod)
	defer businessMetrics.Stop()

	lowStockHandler := inventoryapp.NewLowStockHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)).
		WithSettings(settingsService)
	metricsHandler := eventapp.NewMetricsHandler(businessMetrics, log)
	eventBus.Subscribe(lowStockHandler)
	eventBus.Subscribe(metricsHandler)
	log.Info("Event handlers registered",
		zap.Strings("low_stock_events", lowStockHandler.EventTypes()),
		zap.Strings("metrics_events", metricsHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Housekeeping
	if cfg.Scheduler.Enabled {
		housekeeping := scheduler.NewScheduler(scheduler.Config{
			JobTimeout:    cfg.Scheduler.JobTimeout,
			RetryAttempts: cfg.Scheduler.RetryAttempts,
			RetryDelay:    cfg.Scheduler.RetryDelay,
		}, log)
		retention := cfg.Scheduler.CartRetention
		if err := housekeeping.Register(scheduler.Task{
			Name:     "purge-idle-carts",
			Interval: cfg.Scheduler.CartPurgeInterval,
			Run: func(ctx context.Context) error {
				_, err := cartService.PurgeIdle(ctx, retention)
				return err
			},
		}); err != nil {
			log.Fatal("Failed to register housekeeping task", zap.Error(err))
		}
		if err := housekeeping.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer shutdown(log, "scheduler", housekeeping.Stop)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to set up validator", zap.Error(err))
	}

	globalLimiter, authLimiter, webhookLimiter := newLimiters(cfg.HTTP, redisClient)
	for _, l := range []middleware.Limiter{globalLimiter, authLimiter, webhookLimiter} {
		if m, ok := l.(*middleware.MemoryLimiter); ok {
			defer m.Stop()
		}
	}

	checks := []handler.HealthCheck{{Name: "database", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	systemHandler := handler.NewSystemHandler(handler.SystemInfo{
		Name:    cfg.App.Name,
		Version: version,
		Env:     cfg.App.Env,
	}, checks...)

	engineCfg := router.EngineConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Production:  cfg.App.IsProduction(),
		HTTP:        cfg.HTTP,
		Logger:      log,
		MetricsPath: cfg.Metrics.Path,
		Profiling:   signals.Profiling(),
	}
	if signals.Tracing() {
		engineCfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Metrics.Enabled {
		engineCfg.Metrics = telemetry.NewHTTPMetrics()
		if sqlDB, err := db.SQL(); err == nil {
			if err := engineCfg.Metrics.WatchDB("zambezi", sqlDB); err != nil {
				log.Warn("Database pool metrics unavailable", zap.Error(err))
			}
		}
	}
	engineCfg.Limiter = globalLimiter
	engine := router.NewEngine(engineCfg, systemHandler)

	guards := router.Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Logger:     log,
		}),
		AuthRateLimit: middleware.AuthRateLimit(authLimiter, log),
		WebhookLimit:  middleware.RateLimit(webhookLimiter, log),
	}
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Address:   handler.NewAddressHandler(addressService),
		User:      handler.NewUserHandler(userService),
		Category:  handler.NewCategoryHandler(categoryService),
		Product:   handler.NewProductHandler(productService, imageService),
		Cart:      handler.NewCartHandler(cartService),
		Promotion: handler.NewPromotionHandler(promotionService),
		Zone:      handler.NewZoneHandler(zoneService),
		Delivery:  handler.NewDeliveryHandler(deliveryService),
		Checkout:  handler.NewCheckoutHandler(checkoutService),
		Order:     handler.NewOrderHandler(orderService),
		Webhook:   handler.NewWebhookHandler(webhookService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Report:    handler.NewReportHandler(reportService),
		Settings:  handler.NewSettingsHandler(settingsService),
		System:    systemHandler,
	}
	router.Mount(engine, "v1", router.APIRoutes(handlers, guards)...)

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

// newLimiters returns the global, auth and webhook limiters. The global one
// is nil when rate limiting is switched off; the others always apply.
func newLimiters(cfg config.HTTPConfig, client *redis.Client) (global, authLimit, webhook middleware.Limiter) {
	build := func(prefix string, limit int, period time.Duration) middleware.Limiter {
		if client != nil {
			return middleware.NewRedisLimiter(client, prefix, limit, period)
		}
		return middleware.NewMemoryLimiter(limit, period)
	}
	if cfg.RateLimitEnabled {
		global = build("ratelimit:global", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	authLimit = build("ratelimit:auth", cfg.AuthRateLimitRequests, cfg.AuthRateLimitWindow)
	webhook = build("ratelimit:webhook", webhookRateLimit, time.Minute)
	return global, authLimit, webhook
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	if err := fn(context.Background()); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
