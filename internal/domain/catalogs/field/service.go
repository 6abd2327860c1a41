package field

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/internal/domain"
)

// Repository defines the interface for Field persistence.
type Repository interface {
	domain.CatalogRepository[*Field]

	// ListByFarm returns all active fields belonging to a farm.
	ListByFarm(ctx context.Context, farmID id.ID) ([]*Field, error)
}

// FarmResolver checks that the owning farm exists within the tenant.
type FarmResolver interface {
	Exists(ctx context.Context, farmID id.ID) (bool, error)
}

// ApplicationChecker reports whether any exit applied product to the field.
type ApplicationChecker interface {
	FieldHasApplications(ctx context.Context, fieldID id.ID) (bool, error)
}

// Service provides business logic for the Field catalog.
type Service struct {
	*domain.CatalogService[*Field]
	repo  Repository
	farms FarmResolver
}

// NewService creates a new Field service.
func NewService(repo Repository, txManager tx.Manager, codes domain.CodeIssuer, farms FarmResolver, applications ApplicationChecker) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Field]{
		Repo:       repo,
		TxManager:  txManager,
		Codes:      codes,
		EntityName: "field",
		CodeKind:   "FI",
		HasHistory: func(ctx context.Context, fieldID id.ID) (bool, error) {
			return applications.FieldHasApplications(ctx, fieldID)
		},
	})

	svc := &Service{CatalogService: base, repo: repo, farms: farms}
	base.Hooks().OnBeforeCreate(svc.checkFarm)
	base.Hooks().OnBeforeUpdate(svc.checkFarm)
	return svc
}

// ListByFarm returns all active fields of a farm.
func (s *Service) ListByFarm(ctx context.Context, farmID id.ID) ([]*Field, error) {
	return s.repo.ListByFarm(ctx, farmID)
}

func (s *Service) checkFarm(ctx context.Context, f *Field) error {
	if id.IsNil(f.FarmID) {
		return nil
	}
	ok, err := s.farms.Exists(ctx, f.FarmID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("farm", f.FarmID.String())
	}
	return nil
}
