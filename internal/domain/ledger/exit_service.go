package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/internal/core/types"
	"agrostock/pkg/logger"
)

// ExitService owns the stock exit lifecycle. Exits consume stock: creation
// checks availability under the aggregate row lock, updates reverse the
// original consumption before checking the new quantity against the restored
// headroom, and deletes simply return the stock.
type ExitService struct {
	repo      ExitRepository
	store     AggregateStore
	refs      ReferenceResolver
	txManager tx.Manager
	numerator Numerator
	audit     AuditRecorder
}

func NewExitService(
	repo ExitRepository,
	store AggregateStore,
	refs ReferenceResolver,
	txManager tx.Manager,
	numerator Numerator,
	audit AuditRecorder,
) *ExitService {
	return &ExitService{
		repo:      repo,
		store:     store,
		refs:      refs,
		txManager: txManager,
		numerator: numerator,
		audit:     audit,
	}
}

// Create validates and persists a new exit after confirming sufficient stock
// under the aggregate row lock.
func (s *ExitService) Create(ctx context.Context, exit *Exit) (*Exit, error) {
	tenantID, userID, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	exit.BaseMovement = entity.NewBaseMovement(tenantID, userID)
	if exit.Date.IsZero() {
		exit.Date = time.Now().UTC()
	}
	if err := exit.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.resolveRefs(ctx, tenantID, exit); err != nil {
		return nil, err
	}

	if exit.Number == "" {
		number, err := s.numerator.Next(ctx, tenantID, "SA")
		if err != nil {
			return nil, err
		}
		exit.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, _, err := s.store.GetForUpdate(txCtx, tenantID, exit.ProductID); err != nil {
			return err
		}
		if err := s.store.AssertSufficient(txCtx, tenantID, exit.ProductID, exit.Quantity); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, exit); err != nil {
			return err
		}
		_, err := s.store.Apply(txCtx, tenantID, exit.ProductID, exit.Quantity.Neg(), types.ZeroCost())
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("exit created",
		"exit_id", exit.ID, "number", exit.Number,
		"product_id", exit.ProductID, "quantity", exit.Quantity)
	s.audit.Record(ctx, tenantID, userID, "create", "exit", exit.ID, exit)

	return s.repo.GetByID(ctx, tenantID, exit.ID)
}

// GetByID returns the exit with product and field expanded.
func (s *ExitService) GetByID(ctx context.Context, exitID id.ID) (*Exit, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, tenantID, exitID)
}

// List returns a page of exits matching the filter.
func (s *ExitService) List(ctx context.Context, filter ExitFilter) (MovementPage[*Exit], error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return MovementPage[*Exit]{}, err
	}
	return s.repo.List(ctx, tenantID, filter)
}

// Update replaces the mutable fields of an exit. The original consumption is
// returned to the aggregate first, so the new quantity is checked against the
// restored headroom (current stock plus the original quantity). The whole
// sequence is one transaction; an insufficient new quantity rolls back the
// reversal too.
func (s *ExitService) Update(ctx context.Context, exitID id.ID, patch *Exit) (*Exit, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Exit
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, tenantID, exitID)
		if err != nil {
			return err
		}
		if patch.Version != 0 && patch.Version != existing.Version {
			return apperror.NewConcurrentModification("exit", exitID.String())
		}

		next := *existing
		next.Type = patch.Type
		next.ProductID = patch.ProductID
		next.FieldID = patch.FieldID
		next.Quantity = patch.Quantity
		next.Note = patch.Note
		if !patch.Date.IsZero() {
			next.Date = patch.Date
		}
		next.Product, next.Field = nil, nil
		next.Touch()
		if err := next.Validate(txCtx); err != nil {
			return err
		}
		if err := s.resolveRefs(txCtx, tenantID, &next); err != nil {
			return err
		}

		if err := s.lockProducts(txCtx, tenantID, existing.ProductID, next.ProductID); err != nil {
			return err
		}
		// Return the original consumption, then re-consume the new quantity.
		if _, err := s.store.Apply(txCtx, tenantID, existing.ProductID, existing.Quantity, types.ZeroCost()); err != nil {
			return err
		}
		if err := s.store.AssertSufficient(txCtx, tenantID, next.ProductID, next.Quantity); err != nil {
			return err
		}
		if _, err := s.store.Apply(txCtx, tenantID, next.ProductID, next.Quantity.Neg(), types.ZeroCost()); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("exit updated", "exit_id", exitID, "number", updated.Number)
	if _, userID, err := callerFromContext(ctx); err == nil {
		s.audit.Record(ctx, tenantID, userID, "update", "exit", exitID, updated)
	}

	return s.repo.GetByID(ctx, tenantID, exitID)
}

// Delete marks the exit deleted and returns its quantity to the aggregate.
// Always reversible: returning stock cannot violate the non-negative floor.
func (s *ExitService) Delete(ctx context.Context, exitID id.ID) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	var deleted *Exit
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, tenantID, exitID)
		if err != nil {
			return err
		}
		if _, _, err := s.store.GetForUpdate(txCtx, tenantID, existing.ProductID); err != nil {
			return err
		}
		if _, err := s.store.Apply(txCtx, tenantID, existing.ProductID, existing.Quantity, types.ZeroCost()); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, tenantID, exitID); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Infow("exit deleted", "exit_id", exitID, "number", deleted.Number)
	if _, userID, err := callerFromContext(ctx); err == nil {
		s.audit.Record(ctx, tenantID, userID, "delete", "exit", exitID, deleted)
	}
	return nil
}

// lockProducts takes the aggregate row locks for one or two products in a
// stable order so concurrent cross-product updates cannot deadlock.
func (s *ExitService) lockProducts(ctx context.Context, tenantID, oldProduct, newProduct id.ID) error {
	first, second := oldProduct, newProduct
	if second.String() < first.String() {
		first, second = second, first
	}
	if _, _, err := s.store.GetForUpdate(ctx, tenantID, first); err != nil {
		return err
	}
	if first != second {
		if _, _, err := s.store.GetForUpdate(ctx, tenantID, second); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExitService) resolveRefs(ctx context.Context, tenantID id.ID, exit *Exit) error {
	ok, err := s.refs.ProductExists(ctx, tenantID, exit.ProductID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("product", exit.ProductID.String())
	}
	if exit.Type == ExitApplication {
		ok, err = s.refs.FieldExists(ctx, tenantID, exit.FieldID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewNotFound("field", exit.FieldID.String())
		}
	}
	return nil
}
