package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/config"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/handler"
	"github.com/GTDGit/catalog_api/internal/middleware"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/storage"
	"github.com/GTDGit/catalog_api/internal/utils"
	"github.com/GTDGit/catalog_api/internal/worker"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to MongoDB
	mongoClient, mongoDB, err := database.ConnectMongo(&cfg.Mongo)
	if err != nil {
		log.Error().Err(err).Msg("mongo connection failed")
		fmt.Fprintf(os.Stderr, "mongo connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected successfully")

	// 3c. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	reportCache := cache.NewReportCache(redisClient, cfg.Cache.ReportTTL)
	mediaQueue := cache.NewMediaQueue(redisClient)

	// 4. Initialize media storage
	mediaStore, err := storage.NewS3MediaStore(context.Background(), &cfg.S3)
	if err != nil {
		log.Error().Err(err).Msg("media storage initialization failed")
		fmt.Fprintf(os.Stderr, "media storage initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(mongoDB)
	orderRepo := repository.NewOrderRepository(mongoDB)
	brandRepo := repository.NewBrandRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize services
	limits := catalog.Limits{Default: cfg.Catalog.DefaultPageSize, Max: cfg.Catalog.MaxPageSize}
	policy := catalog.Policy{RequireColorImage: cfg.Catalog.RequireColorImage}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	productSvc := service.NewProductService(productRepo, mediaStore, mediaQueue, reportCache, policy, limits)
	mediaSvc := service.NewMediaService(mediaStore, mediaQueue, cfg.Catalog.MaxUploadImages, cfg.Catalog.MaxUploadBytes)
	brandSvc := service.NewBrandService(brandRepo, reportCache)
	categorySvc := service.NewCategoryService(categoryRepo, mediaStore, mediaQueue, reportCache)
	couponSvc := service.NewCouponService(couponRepo)
	orderSvc := service.NewOrderService(orderRepo, reportCache)
	reportSvc := service.NewReportService(productRepo, orderRepo, brandRepo, categoryRepo, reportCache)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, tokens)

	// 6a. Bootstrap the first admin account
	if cfg.Admin.Email != "" {
		seedAdmin(adminAuthSvc, &cfg.Admin)
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": adminRepo,
			"mongo":    productRepo,
			"redis":    redisClient,
		}),
		Product:  handler.NewProductHandler(productSvc, mediaSvc),
		Media:    handler.NewMediaHandler(mediaSvc),
		Brand:    handler.NewBrandHandler(brandSvc, limits),
		Category: handler.NewCategoryHandler(categorySvc, limits),
		Coupon:   handler.NewCouponHandler(couponSvc),
		Order:    handler.NewOrderHandler(orderSvc),
		Report:   handler.NewReportHandler(reportSvc),
		Auth:     handler.NewAuthHandler(adminAuthSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware(tokens)
	loginLimiter := middleware.NewInvalidAuthRateLimiter()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.MaxMultipartMemory = cfg.Catalog.MaxUploadBytes
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewMediaCleanupWorker(mediaQueue, mediaStore, cfg.Worker.MediaCleanupInterval, cfg.Worker.MediaCleanupBatch).Start(ctx)
	go loginLimiter.Run(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Product  *handler.ProductHandler
	Media    *handler.MediaHandler
	Brand    *handler.BrandHandler
	Category *handler.CategoryHandler
	Coupon   *handler.CouponHandler
	Order    *handler.OrderHandler
	Report   *handler.ReportHandler
	Auth     *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public catalog routes
	v1 := router.Group("/v1")
	{
		v1.GET("/products", handlers.Product.SearchProducts)
		v1.GET("/products/group/:groupId", handlers.Product.ListGroup)
		v1.GET("/products/:id", handlers.Product.GetProduct)

		v1.GET("/brands", handlers.Brand.ListBrands)
		v1.GET("/brands/search", handlers.Brand.SearchBrands)
		v1.GET("/brands/:id", handlers.Brand.GetBrand)

		v1.GET("/categories", handlers.Category.ListCategories)
		v1.GET("/categories/search", handlers.Category.SearchCategories)
		v1.GET("/categories/:id", handlers.Category.GetCategory)

		v1.GET("/coupons/:code", handlers.Coupon.ValidateCoupon)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	admin.Use(jwtMiddleware.Handle())
	{
		admin.GET("/auth/me", handlers.Auth.Me)

		// Product Management
		admin.POST("/products", handlers.Product.CreateProduct)
		admin.PUT("/products/:id", handlers.Product.UpdateProduct)
		admin.DELETE("/products/:id", handlers.Product.DeleteProduct)
		admin.PUT("/products/:id/images/:slot", handlers.Product.ReplaceImage)

		// Media
		admin.POST("/media", handlers.Media.Upload)

		// Brand Management
		admin.POST("/brands", handlers.Brand.CreateBrand)
		admin.PUT("/brands/:id", handlers.Brand.UpdateBrand)
		admin.DELETE("/brands/:id", handlers.Brand.DeleteBrand)

		// Category Management
		admin.POST("/categories", handlers.Category.CreateCategory)
		admin.PUT("/categories/:id", handlers.Category.UpdateCategory)
		admin.DELETE("/categories/:id", handlers.Category.DeleteCategory)

		// Coupon Management
		admin.GET("/coupons", handlers.Coupon.ListCoupons)
		admin.POST("/coupons", handlers.Coupon.CreateCoupon)
		admin.GET("/coupons/:id", handlers.Coupon.GetCoupon)
		admin.PUT("/coupons/:id", handlers.Coupon.UpdateCoupon)
		admin.DELETE("/coupons/:id", handlers.Coupon.DeleteCoupon)

		// Order Management
		admin.GET("/orders", handlers.Order.SearchOrders)
		admin.POST("/orders", handlers.Order.CreateOrder)
		admin.GET("/orders/:id", handlers.Order.GetOrder)
		admin.PUT("/orders/:id", handlers.Order.UpdateOrder)
		admin.DELETE("/orders/:id", handlers.Order.DeleteOrder)

		// Reports
		admin.GET("/reports/catalog", handlers.Report.CatalogReport)
	}
}

// seedAdmin creates the bootstrap admin. An existing account is left untouched.
func seedAdmin(svc *service.AdminAuthService, seed *config.AdminSeedConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := svc.CreateAdmin(ctx, seed.Email, seed.Password, seed.Name)
	switch {
	case err == nil:
		log.Info().Str("email", seed.Email).Msg("bootstrap admin created")
	case errors.Is(err, utils.ErrDuplicateUniqueField):
		log.Debug().Str("email", seed.Email).Msg("bootstrap admin already exists")
	default:
		log.Error().Err(err).Str("email", seed.Email).Msg("failed to create bootstrap admin")
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
