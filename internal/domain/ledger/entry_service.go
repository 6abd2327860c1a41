package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/tx"
	"agrostock/pkg/logger"
)

// EntryService owns the stock entry lifecycle. Every mutation runs inside a
// single transaction: the aggregate row is locked first, the movement effect
// is reversed and reapplied as one unit, and any failure rolls back both the
// movement row and the aggregate.
type EntryService struct {
	repo      EntryRepository
	store     AggregateStore
	refs      ReferenceResolver
	txManager tx.Manager
	numerator Numerator
	audit     AuditRecorder
}

func NewEntryService(
	repo EntryRepository,
	store AggregateStore,
	refs ReferenceResolver,
	txManager tx.Manager,
	numerator Numerator,
	audit AuditRecorder,
) *EntryService {
	return &EntryService{
		repo:      repo,
		store:     store,
		refs:      refs,
		txManager: txManager,
		numerator: numerator,
		audit:     audit,
	}
}

// Create validates and persists a new entry, then applies its effect to the
// product aggregate in the same transaction.
func (s *EntryService) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	tenantID, userID, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	entry.BaseMovement = entity.NewBaseMovement(tenantID, userID)
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.resolveRefs(ctx, tenantID, entry); err != nil {
		return nil, err
	}

	if entry.Number == "" {
		number, err := s.numerator.Next(ctx, tenantID, "EN")
		if err != nil {
			return nil, err
		}
		entry.Number = number
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, _, err := s.store.GetForUpdate(txCtx, tenantID, entry.ProductID); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, entry); err != nil {
			return err
		}
		_, err := s.store.Apply(txCtx, tenantID, entry.ProductID, entry.Quantity, entry.UnitCost)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("entry created",
		"entry_id", entry.ID, "number", entry.Number,
		"product_id", entry.ProductID, "quantity", entry.Quantity)
	s.audit.Record(ctx, tenantID, userID, "create", "entry", entry.ID, entry)

	return s.repo.GetByID(ctx, tenantID, entry.ID)
}

// GetByID returns the entry with product and supplier expanded.
func (s *EntryService) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, tenantID, entryID)
}

// List returns a page of entries matching the filter.
func (s *EntryService) List(ctx context.Context, filter EntryFilter) (MovementPage[*Entry], error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return MovementPage[*Entry]{}, err
	}
	return s.repo.List(ctx, tenantID, filter)
}

// Update replaces the mutable fields of an entry. Inside one transaction the
// original effect is reversed off the aggregate and the new effect applied,
// so the aggregate never reflects a half-updated movement. Reversal requires
// the current stock to cover the original quantity; otherwise the update is
// rejected with CANNOT_REVERSE and nothing changes.
func (s *EntryService) Update(ctx context.Context, entryID id.ID, patch *Entry) (*Entry, error) {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var updated *Entry
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, tenantID, entryID)
		if err != nil {
			return err
		}
		if patch.Version != 0 && patch.Version != existing.Version {
			return apperror.NewConcurrentModification("entry", entryID.String())
		}

		next := *existing
		next.Type = patch.Type
		next.ProductID = patch.ProductID
		next.SupplierID = patch.SupplierID
		next.Quantity = patch.Quantity
		next.UnitCost = patch.UnitCost
		next.Note = patch.Note
		if !patch.Date.IsZero() {
			next.Date = patch.Date
		}
		next.Product, next.Supplier = nil, nil
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
		if err := s.reverse(txCtx, tenantID, existing); err != nil {
			return err
		}
		if _, err := s.store.Apply(txCtx, tenantID, next.ProductID, next.Quantity, next.UnitCost); err != nil {
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

	logger.FromContext(ctx).Infow("entry updated", "entry_id", entryID, "number", updated.Number)
	if _, userID, err := callerFromContext(ctx); err == nil {
		s.audit.Record(ctx, tenantID, userID, "update", "entry", entryID, updated)
	}

	return s.repo.GetByID(ctx, tenantID, entryID)
}

// Delete reverses the entry's effect off the aggregate and marks the row
// deleted, atomically. Rejected with CANNOT_REVERSE when current stock cannot
// cover the entry quantity.
func (s *EntryService) Delete(ctx context.Context, entryID id.ID) error {
	tenantID, err := tenantFromContext(ctx)
	if err != nil {
		return err
	}

	var deleted *Entry
	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, tenantID, entryID)
		if err != nil {
			return err
		}
		if _, _, err := s.store.GetForUpdate(txCtx, tenantID, existing.ProductID); err != nil {
			return err
		}
		if err := s.reverse(txCtx, tenantID, existing); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, tenantID, entryID); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Infow("entry deleted", "entry_id", entryID, "number", deleted.Number)
	if _, userID, err := callerFromContext(ctx); err == nil {
		s.audit.Record(ctx, tenantID, userID, "delete", "entry", entryID, deleted)
	}
	return nil
}

// reverse backs the entry's effect out of its product aggregate. The caller
// must hold the aggregate row lock.
func (s *EntryService) reverse(ctx context.Context, tenantID id.ID, entry *Entry) error {
	agg, found, err := s.store.GetForUpdate(ctx, tenantID, entry.ProductID)
	if err != nil {
		return err
	}
	available := agg.Quantity
	if !found {
		available = 0
	}
	if available < entry.Quantity {
		return apperror.NewCannotReverse(entry.ProductID.String(),
			entry.Quantity.Float64(), available.Float64())
	}
	_, err = s.store.Apply(ctx, tenantID, entry.ProductID, entry.Quantity.Neg(), entry.UnitCost)
	return err
}

// lockProducts takes the aggregate row locks for one or two products in a
// stable order so concurrent cross-product updates cannot deadlock.
func (s *EntryService) lockProducts(ctx context.Context, tenantID, oldProduct, newProduct id.ID) error {
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

func (s *EntryService) resolveRefs(ctx context.Context, tenantID id.ID, entry *Entry) error {
	ok, err := s.refs.ProductExists(ctx, tenantID, entry.ProductID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NewNotFound("product", entry.ProductID.String())
	}
	if entry.Type == EntryPurchase {
		ok, err = s.refs.SupplierExists(ctx, tenantID, entry.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewNotFound("supplier", entry.SupplierID.String())
		}
	}
	return nil
}

// callerFromContext extracts the authenticated caller's tenant and user IDs.
func callerFromContext(ctx context.Context) (tenantID, userID id.ID, err error) {
	user := appctx.GetUser(ctx)
	if user == nil {
		return id.Nil(), id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	tenantID, err = id.Parse(user.TenantID)
	if err != nil {
		return id.Nil(), id.Nil(), apperror.NewUnauthorized("invalid tenant in token")
	}
	userID, err = id.Parse(user.UserID)
	if err != nil {
		return id.Nil(), id.Nil(), apperror.NewUnauthorized("invalid user in token")
	}
	return tenantID, userID, nil
}

func tenantFromContext(ctx context.Context) (id.ID, error) {
	tenantID, _, err := callerFromContext(ctx)
	return tenantID, err
}
