package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

// EntryType discriminates how stock arrived.
type EntryType string

const (
	// EntryPurchase is a receipt from a supplier, priced at a unit cost
	// that blends into the weighted average.
	EntryPurchase EntryType = "PURCHASE"

	// EntryPositiveTransfer is stock moved in from elsewhere. It carries no
	// cost or supplier and leaves the weighted average untouched.
	EntryPositiveTransfer EntryType = "POSITIVE_TRANSFER"
)

// Entry is a stock entry movement: goods received. Applying it increases the
// product aggregate; purchases additionally blend their unit cost into the
// weighted average.
type Entry struct {
	entity.BaseMovement

	Number     string         `db:"number" json:"number"`
	Type       EntryType      `db:"type" json:"type"`
	ProductID  id.ID          `db:"product_id" json:"productId"`
	SupplierID id.ID          `db:"supplier_id" json:"supplierId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitCost   types.Cost     `db:"unit_cost" json:"unitCost"`
	Date       time.Time      `db:"date" json:"date"`
	Note       string         `db:"note" json:"note,omitempty"`

	// Expanded references, populated on reads via join. Never written.
	Product  *ProductRef `db:"-" json:"product,omitempty"`
	Supplier *PartnerRef `db:"-" json:"supplier,omitempty"`
}

// ProductRef is the read-side expansion of a movement's product.
type ProductRef struct {
	ID   id.ID  `db:"-" json:"id"`
	Name string `db:"-" json:"name"`
	Unit string `db:"-" json:"unit,omitempty"`
}

// PartnerRef is the read-side expansion of a movement's counterparty
// (supplier on purchase entries).
type PartnerRef struct {
	ID   id.ID  `db:"-" json:"id"`
	Name string `db:"-" json:"name"`
}

func (e *Entry) Validate(_ context.Context) error {
	if id.IsNil(e.TenantID) {
		return apperror.NewValidation("tenant is required")
	}
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product is required")
	}
	if !e.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive")
	}

	switch e.Type {
	case EntryPurchase:
		if id.IsNil(e.SupplierID) {
			return apperror.NewValidation("supplier is required for purchases").
				WithDetail("field", "supplierId")
		}
		if !e.UnitCost.IsPositive() {
			return apperror.NewValidation("unit cost must be positive for purchases").
				WithDetail("field", "unitCost")
		}
	case EntryPositiveTransfer:
		if !id.IsNil(e.SupplierID) {
			return apperror.NewValidation("transfers cannot reference a supplier").
				WithDetail("field", "supplierId")
		}
		if !e.UnitCost.IsZero() {
			return apperror.NewValidation("transfers cannot carry a unit cost").
				WithDetail("field", "unitCost")
		}
	default:
		return apperror.NewValidation("entry type must be PURCHASE or POSITIVE_TRANSFER").
			WithDetail("field", "type")
	}
	return nil
}

// Cost returns the total cost of the entry (quantity times unit cost).
// Zero for transfers.
func (e *Entry) Cost() types.Cost {
	return e.UnitCost.Mul(e.Quantity.Decimal())
}
