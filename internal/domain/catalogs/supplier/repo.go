package supplier

import (
	"context"

	"agrostock/internal/domain"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]

	// FindByDocument retrieves a supplier by normalized CPF or CNPJ
	// (unique within tenant).
	FindByDocument(ctx context.Context, document string) (*Supplier, error)
}
