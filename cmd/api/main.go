package main

import (
	"fmt"
	"net/http"
	"os"

	"finsight/internal/config"
	"finsight/internal/database"
	"finsight/internal/handlers"
	"finsight/internal/logger"
	"finsight/internal/middleware"
	"finsight/internal/services"
	"finsight/internal/sources"
	"finsight/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finsight/internal/docs" // Import swagger docs
)

// @title           FinSight API
// @version         1.0
// @description     FinSight aggregates company fundamentals from SEC EDGAR, Yahoo Finance and Alpha Vantage and derives financial ratios, per-share metrics and growth rates.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation rules
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Build data sources in priority order, each behind the snapshot cache
	registry, err := buildRegistry(cfg, dbManager)
	if err != nil {
		return err
	}

	// Initialize services and handlers
	companyService := services.NewCompanyService(registry)
	companyHandler := handlers.NewCompanyHandler(companyService)
	healthHandler := handlers.NewHealthHandler(registry)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", healthHandler.Health)

	// API v1 group, gated by API key
	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	company := v1.Group("/company")
	company.GET("/:ticker/overview", companyHandler.GetOverview)
	company.GET("/:ticker/ratios", companyHandler.GetRatios)

	v1.GET("/batch/companies", companyHandler.GetBatch)

	log.Infof("Starting FinSight backend server on port %s", cfg.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	return router.Run(":" + cfg.Port)
}

// buildRegistry assembles the source registry. The preferred source goes
// first; the others stay registered for health reporting. Every source is
// wrapped in the database-backed snapshot cache.
func buildRegistry(cfg *config.Config, dbManager *database.Manager) (*sources.Registry, error) {
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}

	bySetting := map[string]sources.Source{
		"sec_edgar":     sources.NewEDGARSource(httpClient, cfg.SECUserAgent),
		"yahoo_finance": sources.NewYahooSource(httpClient),
	}
	order := []string{"sec_edgar", "yahoo_finance"}

	if cfg.AlphaVantageKey != "" {
		bySetting["alpha_vantage"] = sources.NewAlphaVantageSource(httpClient, cfg.AlphaVantageKey)
		order = append(order, "alpha_vantage")
	}

	preferred, ok := bySetting[cfg.PreferredSource]
	if !ok {
		return nil, fmt.Errorf("unknown or unavailable preferred source: %s", cfg.PreferredSource)
	}

	cached := []sources.Source{sources.NewCachingSource(preferred, dbManager.DB(), cfg.SnapshotCacheTTL)}
	for _, name := range order {
		if name == cfg.PreferredSource {
			continue
		}
		cached = append(cached, sources.NewCachingSource(bySetting[name], dbManager.DB(), cfg.SnapshotCacheTTL))
	}

	return sources.NewRegistry(cached...), nil
}
