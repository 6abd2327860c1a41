package supplier

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/internal/domain"
)

// PurchaseChecker reports whether any entry references the supplier.
type PurchaseChecker interface {
	SupplierHasPurchases(ctx context.Context, supplierID id.ID) (bool, error)
}

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager, codes domain.CodeIssuer, purchases PurchaseChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		Codes:      codes,
		EntityName: "supplier",
		CodeKind:   "SU",
		HasHistory: func(ctx context.Context, supplierID id.ID) (bool, error) {
			return purchases.SupplierHasPurchases(ctx, supplierID)
		},
	})

	svc := &Service{CatalogService: base, repo: repo}
	base.Hooks().OnBeforeCreate(svc.checkDocumentUnique)
	base.Hooks().OnBeforeUpdate(svc.checkDocumentUnique)
	return svc
}

// FindByDocument retrieves a supplier by CPF or CNPJ.
func (s *Service) FindByDocument(ctx context.Context, document string) (*Supplier, error) {
	return s.repo.FindByDocument(ctx, document)
}

// checkDocumentUnique rejects a second supplier with the same tax identifier.
func (s *Service) checkDocumentUnique(ctx context.Context, sup *Supplier) error {
	document := sup.Document()
	if document == "" {
		return nil
	}
	existing, err := s.repo.FindByDocument(ctx, document)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != sup.ID {
		return apperror.NewConflict("supplier with this document already exists").
			WithDetail("document", document)
	}
	return nil
}
