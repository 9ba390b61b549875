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

	billingapp "github.com/vetclinic/backend/internal/application/billing"
	clinicapp "github.com/vetclinic/backend/internal/application/clinic"
	identityapp "github.com/vetclinic/backend/internal/application/identity"
	visitapp "github.com/vetclinic/backend/internal/application/visit"
	"github.com/vetclinic/backend/internal/infrastructure/auth"
	"github.com/vetclinic/backend/internal/infrastructure/cache"
	"github.com/vetclinic/backend/internal/infrastructure/config"
	"github.com/vetclinic/backend/internal/infrastructure/logger"
	"github.com/vetclinic/backend/internal/infrastructure/persistence"
	"github.com/vetclinic/backend/internal/infrastructure/printing"
	"github.com/vetclinic/backend/internal/interfaces/http/handler"
	"github.com/vetclinic/backend/internal/interfaces/http/middleware"
	"github.com/vetclinic/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting clinic backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Dashboard totals cache: Redis when reachable, otherwise an
	// in-process fallback so the server still starts without it
	var totalsCache billingapp.TotalsCache
	redisCache, err := cache.NewRedisTotalsCache(cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory totals cache", zap.Error(err))
		totalsCache = cache.NewInMemoryTotalsCache()
	} else {
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		totalsCache = redisCache
	}

	// Initialize repositories
	animalRepo := persistence.NewGormAnimalRepository(db.DB)
	ownerRepo := persistence.NewGormOwnerRepository(db.DB)
	doctorRepo := persistence.NewGormDoctorRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormProductCategoryRepository(db.DB)
	visitRepo := persistence.NewGormVisitRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	partnerRepo := persistence.NewGormBillingPartnerRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)
	ledger := persistence.NewGormLedger(db.DB, accountRepo)
	deliverer := persistence.NewGormStockDeliverer(db.DB)

	renderer, err := printing.NewHTMLReceiptRenderer(cfg.App.Name)
	if err != nil {
		log.Fatal("Failed to initialize receipt renderer", zap.Error(err))
	}

	// Initialize application services
	registryService := clinicapp.NewRegistryService(
		animalRepo, ownerRepo, doctorRepo, serviceRepo,
		productRepo, categoryRepo, sequences, log)
	visitService := visitapp.NewVisitService(
		visitRepo, animalRepo, ownerRepo, doctorRepo,
		serviceRepo, invoiceRepo, sequences, log)
	invoiceService := billingapp.NewInvoiceService(
		visitRepo, ownerRepo, serviceRepo, productRepo, categoryRepo,
		invoiceRepo, partnerRepo, accountRepo, deliverer, sequences, log)
	paymentService := billingapp.NewPaymentService(
		visitRepo, invoiceRepo, paymentRepo, partnerRepo,
		journalRepo, accountRepo, ledger, sequences, log)
	receiptService := billingapp.NewReceiptService(
		visitRepo, animalRepo, ownerRepo, doctorRepo, renderer, log)
	dashboardService := billingapp.NewDashboardService(
		invoiceRepo, visitRepo, totalsCache, cfg.Dashboard.CacheTTL, log)
	accessService := identityapp.NewAccessService(userRepo, branchRepo, log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Report JSON field names in binding validation errors
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. JWT - Authenticate and attach the caller identity
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	engine.Use(middleware.JWTAuthWithConfig(jwtConfig))

	// Liveness endpoint outside API versioning, with a database ping
	engine.GET("/health", healthHandler(db))

	// Register API routes
	router.NewRouter(engine).
		Register(handler.NewSystemHandler(cfg.App.Name)).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewAccessHandler(accessService)).
		Register(handler.NewRegistryHandler(registryService)).
		Register(handler.NewVisitHandler(visitService)).
		Register(handler.NewBillingHandler(invoiceService, paymentService, receiptService)).
		Register(handler.NewDashboardHandler(dashboardService)).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
