// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/domain/authz"
	"agrostock/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Restore(c *gin.Context)
}

// MovementRouteHandler defines the interface for movement handlers.
type MovementRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
//
// Usage:
//
//	repo := catalog_repo.NewProductRepo(txManager)
//	service := product.NewService(repo, txManager, numerator, history)
//	handler := handlers.NewProductHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/products"), handler, evaluator, authz.SubjectProduct)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, evaluator *authz.Evaluator, subjectType string) {
	group.GET("", middleware.Authorize(evaluator, authz.ActionRead, subjectType), handler.List)
	group.POST("", middleware.Authorize(evaluator, authz.ActionCreate, subjectType), handler.Create)
	group.GET("/:id", middleware.Authorize(evaluator, authz.ActionRead, subjectType), handler.Get)
	group.PUT("/:id", middleware.Authorize(evaluator, authz.ActionUpdate, subjectType), handler.Update)
	group.DELETE("/:id", middleware.Authorize(evaluator, authz.ActionDelete, subjectType), handler.Delete)
	group.POST("/:id/restore", middleware.Authorize(evaluator, authz.ActionDelete, subjectType), handler.Restore)
}

// RegisterMovementRoutes registers standard CRUD routes for a movement kind.
// Read and create are checked here; update and delete carry an ownership
// condition that needs the stored row, so those handlers run the capability
// check themselves.
func RegisterMovementRoutes(group *gin.RouterGroup, handler MovementRouteHandler, evaluator *authz.Evaluator, subjectType string) {
	group.GET("", middleware.Authorize(evaluator, authz.ActionRead, subjectType), handler.List)
	group.POST("", middleware.Authorize(evaluator, authz.ActionCreate, subjectType), handler.Create)
	group.GET("/:id", middleware.Authorize(evaluator, authz.ActionRead, subjectType), handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
