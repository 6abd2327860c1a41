package domain

import (
	"context"
	"fmt"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
)

// CodeIssuer hands out sequential codes per tenant and kind. Satisfied by the
// numerator service.
type CodeIssuer interface {
	Next(ctx context.Context, tenantID id.ID, kind string) (string, error)
}

// HistoryChecker reports whether the entity is referenced by movement
// history. Drives the delete dispatch: referenced entities are deactivated,
// unreferenced ones are purged.
type HistoryChecker func(ctx context.Context, entityID id.ID) (bool, error)

// codeAware is implemented by entities with an auto-assignable code.
type codeAware interface {
	GetCode() string
	SetCode(code string)
}

// CatalogService provides business logic shared by all catalog entities.
type CatalogService[T entity.Validatable] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	codes      CodeIssuer
	hooks      *HookRegistry[T]
	hasHistory HistoryChecker

	// entityName for error messages; codeKind for auto-assigned codes
	entityName string
	codeKind   string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Codes      CodeIssuer
	HasHistory HistoryChecker
	EntityName string
	CodeKind   string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		codes:      cfg.Codes,
		hooks:      NewHookRegistry[T](),
		hasHistory: cfg.HasHistory,
		entityName: cfg.EntityName,
		codeKind:   cfg.CodeKind,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// Create validates and inserts a new catalog entity. A missing code is
// auto-assigned from the tenant's sequence; an explicit duplicate code is
// rejected.
func (s *CatalogService[T]) Create(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if ca, ok := any(ent).(codeAware); ok {
		if ca.GetCode() == "" && s.codes != nil && s.codeKind != "" {
			tenantID, err := id.Parse(appctx.GetTenantID(ctx))
			if err != nil {
				return apperror.NewUnauthorized("authentication required")
			}
			code, err := s.codes.Next(ctx, tenantID, s.codeKind)
			if err != nil {
				return err
			}
			ca.SetCode(code)
		}
		if ca.GetCode() != "" {
			exists, err := s.repo.ExistsByCode(ctx, ca.GetCode())
			if err != nil {
				return err
			}
			if exists {
				return apperror.NewDuplicate(s.entityName, "code", ca.GetCode())
			}
		}
	}

	if err := s.hooks.Run(ctx, BeforeCreate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ent); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// After-create hooks run outside the transaction; the entity is already
	// committed, so failures are not propagated.
	_ = s.hooks.Run(ctx, AfterCreate, ent)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return ent, s.normalizeGetErr(err, entityID.String())
	}
	return ent, nil
}

// GetByCode retrieves entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	ent, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return ent, s.normalizeGetErr(err, code)
	}
	return ent, nil
}

// Update validates and persists an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, ent T) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, ent); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, AfterUpdate, ent)
	return nil
}

// Delete removes a catalog entity. Entities referenced by movement history
// are deactivated so historical documents keep resolving; unreferenced
// entities are physically purged.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, ent); err != nil {
		return err
	}

	referenced := true
	if s.hasHistory != nil {
		referenced, err = s.hasHistory(ctx, entityID)
		if err != nil {
			return err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if referenced {
			if err := s.repo.SetDeletionMark(ctx, entityID, true); err != nil {
				return fmt.Errorf("deactivate %s: %w", s.entityName, err)
			}
			return nil
		}
		if err := s.repo.Purge(ctx, entityID); err != nil {
			return fmt.Errorf("purge %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, AfterDelete, ent)
	return nil
}

// Restore clears the deactivation mark.
func (s *CatalogService[T]) Restore(ctx context.Context, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entityID, false)
	})
}

// List retrieves entities with filtering and pagination.
func (s *CatalogService[T]) List(ctx context.Context, f ListFilter) (ListResult[T], error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListFilter().Limit
	}
	if f.OrderBy == "" {
		f.OrderBy = DefaultListFilter().OrderBy
	}
	for _, item := range f.AdvancedFilters {
		if !item.Valid() {
			return ListResult[T]{}, apperror.NewValidation("unknown filter operator").
				WithDetail("operator", string(item.Operator)).
				WithDetail("field", item.Field)
		}
	}
	return s.repo.List(ctx, f)
}

// Exists checks if entity with given ID exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}
