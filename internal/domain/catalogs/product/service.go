package product

import (
	"context"

	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/internal/domain"
)

// MovementChecker reports whether any entry or exit references the product.
type MovementChecker interface {
	ProductHasMovements(ctx context.Context, productID id.ID) (bool, error)
}

// Service provides business logic for the Product catalog.
// Delete dispatch: products referenced by movements are deactivated so
// historical documents keep resolving; unreferenced products are purged.
type Service struct {
	*domain.CatalogService[*Product]
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, codes domain.CodeIssuer, movements MovementChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Codes:      codes,
		EntityName: "product",
		CodeKind:   "PR",
		HasHistory: func(ctx context.Context, productID id.ID) (bool, error) {
			return movements.ProductHasMovements(ctx, productID)
		},
	})
	return &Service{CatalogService: base}
}
