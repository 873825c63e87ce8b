package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/app/echo-server/router"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/category"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/events"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/product"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/recommendation"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/similarity"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/business/trending"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/middleware"
	psqlRepo "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/repository/postgres"
	redisRepo "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/repository/redis"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/internal/rest"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/config"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/database"
	redisdb "github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/database/redis"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/logger"
	"github.com/aswithabukka/ecommerce-recommendation-system-ShopSmart/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting ShopSmart recommendation API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Redis connected successfully")

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	categoryRepo := psqlRepo.NewCategoryRepository(db)
	trendingRepo := psqlRepo.NewTrendingRepository(db)
	similarityRepo := psqlRepo.NewSimilarityRepository(db)

	cacheRepo := redisRepo.NewCacheRepository(redisClient)
	recoCache := redisRepo.NewRecommendationCache(cacheRepo, cfg.CacheTTL)

	// Init service
	eventService := events.NewService(eventRepo, userRepo, productRepo, recoCache)
	trendingService := trending.NewService(eventRepo, productRepo, trendingRepo, recoCache, cfg.Recommender)
	similarityService := similarity.NewService(eventRepo, similarityRepo, recoCache, cfg.Recommender)
	recommendationService := recommendation.NewService(userRepo, eventRepo, productRepo, similarityRepo, trendingRepo, recoCache, cfg.Recommender)
	productService := product.NewProductService(productRepo, categoryRepo, recoCache)
	categoryService := category.NewCategoryService(categoryRepo)

	// Init handler
	eventHandler := rest.NewEventHandler(eventService)
	recommendationHandler := rest.NewRecommendationHandler(recommendationService)
	productHandler := rest.NewProductHandler(productService)
	categoryHandler := rest.NewCategoryHandler(categoryService)
	adminHandler := rest.NewAdminHandler(trendingService, similarityService, trendingRepo, similarityRepo, recoCache)
	healthHandler := rest.NewHealthHandler(db, redisClient)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	adminOnly := middleware.AdminAuth(cfg.Admin.JWTSecret)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupEventRoutes(api, eventHandler)
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupProductRoutes(api, productHandler, adminOnly)
	router.SetupCategoryRoutes(api, categoryHandler, adminOnly)
	router.SetupAdminRoutes(api, adminHandler, adminOnly)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis close error", "error", err)
	}

	logger.Info("Server stopped")
}
