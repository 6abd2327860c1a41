package farm

import (
	"context"

	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/internal/domain"
)

// Repository defines the interface for Farm persistence.
type Repository interface {
	domain.CatalogRepository[*Farm]
}

// FieldCounter reports whether the farm still has fields attached.
type FieldCounter interface {
	FarmHasFields(ctx context.Context, farmID id.ID) (bool, error)
}

// Service provides business logic for the Farm catalog. A farm with fields
// attached is deactivated on delete; an empty farm is purged.
type Service struct {
	*domain.CatalogService[*Farm]
}

// NewService creates a new Farm service.
func NewService(repo Repository, txManager tx.Manager, codes domain.CodeIssuer, fields FieldCounter) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Farm]{
		Repo:       repo,
		TxManager:  txManager,
		Codes:      codes,
		EntityName: "farm",
		CodeKind:   "FA",
		HasHistory: func(ctx context.Context, farmID id.ID) (bool, error) {
			return fields.FarmHasFields(ctx, farmID)
		},
	})
	return &Service{CatalogService: base}
}
