package ledger_repo

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/id"
)

// MovementHistory answers "is this catalog record referenced by movement
// history" for the catalog delete dispatch. The tenant comes from the
// authenticated caller.
type MovementHistory struct {
	entries *EntryRepo
	exits   *ExitRepo
}

// NewMovementHistory creates a movement history checker.
func NewMovementHistory(entries *EntryRepo, exits *ExitRepo) *MovementHistory {
	return &MovementHistory{entries: entries, exits: exits}
}

// ProductHasMovements reports whether any entry or exit references the product.
func (h *MovementHistory) ProductHasMovements(ctx context.Context, productID id.ID) (bool, error) {
	tenantID, err := h.tenantID(ctx)
	if err != nil {
		return false, err
	}

	has, err := h.entries.ExistsByProduct(ctx, tenantID, productID)
	if err != nil || has {
		return has, err
	}
	return h.exits.ExistsByProduct(ctx, tenantID, productID)
}

// SupplierHasPurchases reports whether any entry references the supplier.
func (h *MovementHistory) SupplierHasPurchases(ctx context.Context, supplierID id.ID) (bool, error) {
	tenantID, err := h.tenantID(ctx)
	if err != nil {
		return false, err
	}
	return h.entries.ExistsBySupplier(ctx, tenantID, supplierID)
}

// FieldHasApplications reports whether any exit applied product to the field.
func (h *MovementHistory) FieldHasApplications(ctx context.Context, fieldID id.ID) (bool, error) {
	tenantID, err := h.tenantID(ctx)
	if err != nil {
		return false, err
	}
	return h.exits.ExistsByField(ctx, tenantID, fieldID)
}

func (h *MovementHistory) tenantID(ctx context.Context) (id.ID, error) {
	tenantID, err := id.Parse(appctx.GetTenantID(ctx))
	if err != nil {
		return id.Nil(), apperror.NewUnauthorized("authentication required")
	}
	return tenantID, nil
}
