// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"tally/internal/analytics"
	"tally/internal/auth"
	"tally/internal/categories"
	"tally/internal/sectors"
	"tally/internal/shared/config"
	"tally/internal/shared/database"
	"tally/internal/shared/middleware"
	"tally/internal/stocks"
	"tally/internal/users"
	"tally/pkg/cache"
	"tally/pkg/logger"
	"tally/pkg/token"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	_ "tally/docs" // registers the generated swagger document
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	cache    cache.Service
	verifier *token.Verifier
	notifier auth.Notifier
	market   stocks.MarketData

	stockService stocks.Service // kept for the background price-sync worker

	startedAt time.Time
}

// NewRouter creates a new router instance. The notifier and market client are
// built in main because their lifecycles (kafka pipeline, outbound HTTP)
// outlive any single request.
func NewRouter(cfg *config.Config, db *database.DB, notifier auth.Notifier, market stocks.MarketData) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cache.NewService(db.GetRedisClient()),
		verifier:  token.NewVerifier(cfg.TokenConfig()),
		notifier:  notifier,
		market:    market,
		startedAt: time.Now(),
	}
}

// StockService exposes the watchlist service for the background sync worker.
// Valid only after SetupRoutes has run.
func (r *Router) StockService() stocks.Service {
	return r.stockService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// The authentication gate runs engine-wide; allow-listed paths
	// (credential endpoints, docs, health probes) pass through untouched.
	engine.Use(middleware.Authentication(r.verifier, r.config.Auth.AllowedPaths))

	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Swagger UI and raw document
	r.setupDocsRoutes(engine)

	// Account surface: auth, profile, bill categories, admin overview
	account := engine.Group("/api/account")
	{
		r.setupAuthRoutes(account)
		r.setupUserRoutes(account)
		r.setupCategoryRoutes(account)
		r.setupAnalyticsRoutes(account)
	}

	// Market surface: per-user watchlist, stored daily prices, hot sectors
	stock := engine.Group("/api/stock")
	{
		r.setupStockRoutes(stock)
		r.setupSectorRoutes(stock)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		status := "healthy"
		httpStatus := http.StatusOK
		dependencies := gin.H{"postgres": "up", "redis": "up"}

		if err := r.db.PingPostgres(ctx); err != nil {
			dependencies["postgres"] = err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		if err := r.db.PingRedis(ctx); err != nil {
			dependencies["redis"] = err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":       status,
			"dependencies": dependencies,
			"timestamp":    time.Now(),
			"service":      "tally-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "operational",
			"uptime":     time.Since(r.startedAt).String(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"timestamp":  time.Now(),
		})
	})
}

// setupDocsRoutes serves the swagger UI and the raw generated document. Both
// sit on the allow-list so the API is explorable without a token.
func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.json")))

	engine.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "swagger document unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	codeStore := auth.NewCodeStore(r.db.GetRedisClient(), r.config.Redis.VerifyCodeTTL)

	// Warm the consume script cache; consumption still works without it.
	if err := codeStore.Preload(context.Background()); err != nil {
		logger.GetDefault().WithError(err).Warn("verify-code script preload failed")
	}

	authService := auth.NewService(authRepo, codeStore, r.notifier, r.config.TokenConfig())
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupUserRoutes configures profile routes
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	userService := users.NewService(userRepo)
	userController := users.NewController(userService)

	users.SetupUserRoutes(rg, userController)
}

// setupCategoryRoutes configures bill category routes
func (r *Router) setupCategoryRoutes(rg *gin.RouterGroup) {
	categoryRepo := categories.NewRepository(r.db.GetPostgreSQL())
	categoryService := categories.NewService(categoryRepo, r.cache, r.config.Redis.CategoryTTL)
	categoryController := categories.NewController(categoryService)

	categories.SetupCategoryRoutes(rg, categoryController)
}

// setupAnalyticsRoutes configures the admin overview
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo)
	analyticsController := analytics.NewController(analyticsService)

	analytics.SetupAnalyticsRoutes(rg, analyticsController)
}

// setupStockRoutes configures watchlist routes
func (r *Router) setupStockRoutes(rg *gin.RouterGroup) {
	stockRepo := stocks.NewRepository(r.db.GetPostgreSQL())
	stockService := stocks.NewService(stockRepo, r.market, r.cache, r.config.Redis.QuoteTTL)
	stockController := stocks.NewController(stockService)

	// Keep the service around for the price-sync worker
	r.stockService = stockService

	stocks.SetupStockRoutes(rg, stockController)
}

// setupSectorRoutes configures hot-sector routes
func (r *Router) setupSectorRoutes(rg *gin.RouterGroup) {
	sectorRepo := sectors.NewRepository(r.db.GetPostgreSQL())
	sectorService := sectors.NewService(sectorRepo)
	sectorController := sectors.NewController(sectorService)

	sectors.SetupSectorRoutes(rg, sectorController)
}
