// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/domain/auth"
	"agrostock/internal/domain/authz"
	"agrostock/internal/domain/catalogs/farm"
	"agrostock/internal/domain/catalogs/field"
	"agrostock/internal/domain/catalogs/product"
	"agrostock/internal/domain/catalogs/supplier"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/http/v1/handlers"
	"agrostock/internal/infrastructure/http/v1/middleware"
	"agrostock/internal/infrastructure/storage/postgres"
	"agrostock/internal/infrastructure/storage/postgres/catalog_repo"
	"agrostock/internal/infrastructure/storage/postgres/ledger_repo"
	"agrostock/pkg/logger"
	"agrostock/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (shared by all tenants)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number and catalog code generation
	Numerator *numerator.Service

	// Evaluator answers capability checks
	Evaluator *authz.Evaluator

	// Audit records ledger mutations
	Audit ledger.AuditRecorder
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	txManager := postgres.NewTxManager(cfg.Pool)

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg, txManager)
		registerMovementRoutes(protected, cfg, txManager)
		registerStockRoutes(protected, cfg, txManager)
		registerUserRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	public := rg.Group("/auth")
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	// Protected auth endpoints (JWT required)
	private := rg.Group("/auth")
	private.Use(middleware.Auth(cfg.JWTValidator))
	private.GET("/me", authHandler.Me)
	private.POST("/change-password", authHandler.ChangePassword)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig, txManager *postgres.TxManager) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	entryRepo := ledger_repo.NewEntryRepo(txManager)
	exitRepo := ledger_repo.NewExitRepo(txManager)
	history := ledger_repo.NewMovementHistory(entryRepo, exitRepo)

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(txManager)
		service := product.NewService(repo, txManager, cfg.Numerator, history)
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler, cfg.Evaluator, authz.SubjectProduct)
	}

	// --- SUPPLIERS ---
	{
		repo := catalog_repo.NewSupplierRepo(txManager)
		service := supplier.NewService(repo, txManager, cfg.Numerator, history)
		handler := handlers.NewSupplierHandler(baseHandler, service)
		group := catalogs.Group("/suppliers")
		group.GET("/by-document", middleware.Authorize(cfg.Evaluator, authz.ActionRead, authz.SubjectSupplier), handler.FindByDocument)
		RegisterCatalogRoutes(group, handler, cfg.Evaluator, authz.SubjectSupplier)
	}

	// --- FARMS AND FIELDS ---
	{
		fieldRepo := catalog_repo.NewFieldRepo(txManager)
		farmRepo := catalog_repo.NewFarmRepo(txManager)

		farmService := farm.NewService(farmRepo, txManager, cfg.Numerator, fieldRepo)
		farmHandler := handlers.NewFarmHandler(baseHandler, farmService)

		fieldService := field.NewService(fieldRepo, txManager, cfg.Numerator, farmRepo, history)
		fieldHandler := handlers.NewFieldHandler(baseHandler, fieldService)

		farms := catalogs.Group("/farms")
		farms.GET("/:id/fields", middleware.Authorize(cfg.Evaluator, authz.ActionRead, authz.SubjectField), fieldHandler.ListByFarm)
		RegisterCatalogRoutes(farms, farmHandler, cfg.Evaluator, authz.SubjectFarm)
		RegisterCatalogRoutes(catalogs.Group("/fields"), fieldHandler, cfg.Evaluator, authz.SubjectField)
	}
}

// registerMovementRoutes registers entry and exit endpoints.
func registerMovementRoutes(rg *gin.RouterGroup, cfg RouterConfig, txManager *postgres.TxManager) {
	movements := rg.Group("/movements")
	baseHandler := handlers.NewBaseHandler()

	aggregates := ledger_repo.NewAggregateRepo(txManager)
	resolver := ledger_repo.NewCatalogResolver(txManager)

	// --- ENTRIES ---
	{
		repo := ledger_repo.NewEntryRepo(txManager)
		service := ledger.NewEntryService(repo, aggregates, resolver, txManager, cfg.Numerator, cfg.Audit)
		handler := handlers.NewEntryHandler(baseHandler, service, cfg.Evaluator)
		RegisterMovementRoutes(movements.Group("/entries"), handler, cfg.Evaluator, authz.SubjectEntry)
	}

	// --- EXITS ---
	{
		repo := ledger_repo.NewExitRepo(txManager)
		service := ledger.NewExitService(repo, aggregates, resolver, txManager, cfg.Numerator, cfg.Audit)
		handler := handlers.NewExitHandler(baseHandler, service, cfg.Evaluator)
		RegisterMovementRoutes(movements.Group("/exits"), handler, cfg.Evaluator, authz.SubjectExit)
	}
}

// registerStockRoutes registers stock aggregate reporting endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig, txManager *postgres.TxManager) {
	baseHandler := handlers.NewBaseHandler()
	store := ledger_repo.NewAggregateRepo(txManager)
	handler := handlers.NewStockHandler(baseHandler, store)

	stock := rg.Group("/stock")
	stock.GET("/aggregates", middleware.Authorize(cfg.Evaluator, authz.ActionRead, authz.SubjectStock), handler.List)
	stock.GET("/aggregates/:productId", middleware.Authorize(cfg.Evaluator, authz.ActionRead, authz.SubjectStock), handler.Get)
}

// registerUserRoutes registers tenant user administration endpoints.
func registerUserRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewUserHandler(baseHandler, cfg.AuthService)

	users := rg.Group("/users")
	users.Use(middleware.RequireAdmin())
	users.GET("", handler.List)
	users.POST("", handler.Create)
	users.GET("/:id", handler.Get)
	users.PUT("/:id/active", handler.SetActive)
	users.DELETE("/:id", handler.Deactivate)
}
