package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

// ExitType discriminates how stock left.
type ExitType string

const (
	// ExitApplication is product applied to a field.
	ExitApplication ExitType = "APPLICATION"

	// ExitNegativeTransfer is stock moved out to elsewhere; no field involved.
	ExitNegativeTransfer ExitType = "NEGATIVE_TRANSFER"
)

// Exit is a stock exit movement: product consumed. Applying it decreases the
// product aggregate; the weighted average unit cost is left untouched.
type Exit struct {
	entity.BaseMovement

	Number    string         `db:"number" json:"number"`
	Type      ExitType       `db:"type" json:"type"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	FieldID   id.ID          `db:"field_id" json:"fieldId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Date      time.Time      `db:"date" json:"date"`
	Note      string         `db:"note" json:"note,omitempty"`

	// Expanded references, populated on reads via join. Never written.
	Product *ProductRef `db:"-" json:"product,omitempty"`
	Field   *FieldRef   `db:"-" json:"field,omitempty"`
}

// FieldRef is the read-side expansion of an application exit's destination
// field.
type FieldRef struct {
	ID   id.ID  `db:"-" json:"id"`
	Name string `db:"-" json:"name"`
}

func (e *Exit) Validate(_ context.Context) error {
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
	case ExitApplication:
		if id.IsNil(e.FieldID) {
			return apperror.NewValidation("field is required for applications").
				WithDetail("field", "fieldId")
		}
	case ExitNegativeTransfer:
		if !id.IsNil(e.FieldID) {
			return apperror.NewValidation("transfers cannot reference a field").
				WithDetail("field", "fieldId")
		}
	default:
		return apperror.NewValidation("exit type must be APPLICATION or NEGATIVE_TRANSFER").
			WithDetail("field", "type")
	}
	return nil
}
