package dto

import (
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/ledger"
)

// parseMovementDate accepts an optional RFC 3339 document date. Empty means
// "now", filled in by the service.
func parseMovementDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date (RFC 3339 expected)").
			WithDetail("field", "date")
	}
	return t, nil
}

// --- Entry DTOs ---

// CreateEntryRequest records stock coming in: a priced purchase from a
// supplier, or an unpriced transfer.
type CreateEntryRequest struct {
	Type       string  `json:"type" binding:"required,oneof=PURCHASE POSITIVE_TRANSFER"`
	ProductID  string  `json:"productId" binding:"required"`
	SupplierID string  `json:"supplierId"`
	Quantity   float64 `json:"quantity" binding:"required"`
	UnitCost   string  `json:"unitCost"`
	Date       string  `json:"date"`
	Note       string  `json:"note"`
}

// ToEntity converts the DTO to a domain entry.
func (r *CreateEntryRequest) ToEntity() (*ledger.Entry, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid productId format").WithDetail("field", "productId")
	}

	supplierID := id.Nil()
	if r.SupplierID != "" {
		if supplierID, err = id.Parse(r.SupplierID); err != nil {
			return nil, apperror.NewValidation("invalid supplierId format").WithDetail("field", "supplierId")
		}
	}

	unitCost := types.ZeroCost()
	if r.UnitCost != "" {
		if unitCost, err = types.NewCostFromString(r.UnitCost); err != nil {
			return nil, apperror.NewValidation("invalid unitCost format").WithDetail("field", "unitCost")
		}
	}

	date, err := parseMovementDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &ledger.Entry{
		Type:       ledger.EntryType(r.Type),
		ProductID:  productID,
		SupplierID: supplierID,
		Quantity:   types.NewQuantityFromFloat64(r.Quantity),
		UnitCost:   unitCost,
		Date:       date,
		Note:       r.Note,
	}, nil
}

// UpdateEntryRequest replaces the mutable fields of an entry.
type UpdateEntryRequest struct {
	Type       string  `json:"type" binding:"required,oneof=PURCHASE POSITIVE_TRANSFER"`
	ProductID  string  `json:"productId" binding:"required"`
	SupplierID string  `json:"supplierId"`
	Quantity   float64 `json:"quantity" binding:"required"`
	UnitCost   string  `json:"unitCost"`
	Date       string  `json:"date"`
	Note       string  `json:"note"`
	Version    int     `json:"version" binding:"required,min=1"`
}

// ToPatch converts the DTO to the patch the service applies.
func (r *UpdateEntryRequest) ToPatch() (*ledger.Entry, error) {
	create := CreateEntryRequest{
		Type:       r.Type,
		ProductID:  r.ProductID,
		SupplierID: r.SupplierID,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Date:       r.Date,
		Note:       r.Note,
	}
	patch, err := create.ToEntity()
	if err != nil {
		return nil, err
	}
	patch.Version = r.Version
	return patch, nil
}

// RefResponse is an expanded reference on a movement.
type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// EntryResponse is the response body for an entry.
type EntryResponse struct {
	MovementResponse
	Type       string       `json:"type"`
	ProductID  string       `json:"productId"`
	SupplierID string       `json:"supplierId,omitempty"`
	Quantity   float64      `json:"quantity"`
	UnitCost   string       `json:"unitCost"`
	TotalCost  string       `json:"totalCost"`
	Date       time.Time    `json:"date"`
	Note       string       `json:"note,omitempty"`
	Product    *RefResponse `json:"product,omitempty"`
	Supplier   *RefResponse `json:"supplier,omitempty"`
}

// FromEntry creates a response DTO from a domain entry.
func FromEntry(e *ledger.Entry) *EntryResponse {
	resp := &EntryResponse{
		MovementResponse: FromMovement(e.Number, e.BaseMovement),
		Type:             string(e.Type),
		ProductID:        e.ProductID.String(),
		Quantity:         e.Quantity.Float64(),
		UnitCost:         e.UnitCost.String(),
		TotalCost:        e.Cost().String(),
		Date:             e.Date,
		Note:             e.Note,
	}
	if !id.IsNil(e.SupplierID) {
		resp.SupplierID = e.SupplierID.String()
	}
	if e.Product != nil {
		resp.Product = &RefResponse{ID: e.Product.ID.String(), Name: e.Product.Name, Unit: e.Product.Unit}
	}
	if e.Supplier != nil {
		resp.Supplier = &RefResponse{ID: e.Supplier.ID.String(), Name: e.Supplier.Name}
	}
	return resp
}

// --- Exit DTOs ---

// CreateExitRequest records stock going out: an application onto a field, or
// an outbound transfer.
type CreateExitRequest struct {
	Type      string  `json:"type" binding:"required,oneof=APPLICATION NEGATIVE_TRANSFER"`
	ProductID string  `json:"productId" binding:"required"`
	FieldID   string  `json:"fieldId"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Date      string  `json:"date"`
	Note      string  `json:"note"`
}

// ToEntity converts the DTO to a domain exit.
func (r *CreateExitRequest) ToEntity() (*ledger.Exit, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return nil, apperror.NewValidation("invalid productId format").WithDetail("field", "productId")
	}

	fieldID := id.Nil()
	if r.FieldID != "" {
		if fieldID, err = id.Parse(r.FieldID); err != nil {
			return nil, apperror.NewValidation("invalid fieldId format").WithDetail("field", "fieldId")
		}
	}

	date, err := parseMovementDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &ledger.Exit{
		Type:      ledger.ExitType(r.Type),
		ProductID: productID,
		FieldID:   fieldID,
		Quantity:  types.NewQuantityFromFloat64(r.Quantity),
		Date:      date,
		Note:      r.Note,
	}, nil
}

// UpdateExitRequest replaces the mutable fields of an exit.
type UpdateExitRequest struct {
	Type      string  `json:"type" binding:"required,oneof=APPLICATION NEGATIVE_TRANSFER"`
	ProductID string  `json:"productId" binding:"required"`
	FieldID   string  `json:"fieldId"`
	Quantity  float64 `json:"quantity" binding:"required"`
	Date      string  `json:"date"`
	Note      string  `json:"note"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// ToPatch converts the DTO to the patch the service applies.
func (r *UpdateExitRequest) ToPatch() (*ledger.Exit, error) {
	create := CreateExitRequest{
		Type:      r.Type,
		ProductID: r.ProductID,
		FieldID:   r.FieldID,
		Quantity:  r.Quantity,
		Date:      r.Date,
		Note:      r.Note,
	}
	patch, err := create.ToEntity()
	if err != nil {
		return nil, err
	}
	patch.Version = r.Version
	return patch, nil
}

// ExitResponse is the response body for an exit.
type ExitResponse struct {
	MovementResponse
	Type      string       `json:"type"`
	ProductID string       `json:"productId"`
	FieldID   string       `json:"fieldId,omitempty"`
	Quantity  float64      `json:"quantity"`
	Date      time.Time    `json:"date"`
	Note      string       `json:"note,omitempty"`
	Product   *RefResponse `json:"product,omitempty"`
	Field     *RefResponse `json:"field,omitempty"`
}

// FromExit creates a response DTO from a domain exit.
func FromExit(e *ledger.Exit) *ExitResponse {
	resp := &ExitResponse{
		MovementResponse: FromMovement(e.Number, e.BaseMovement),
		Type:             string(e.Type),
		ProductID:        e.ProductID.String(),
		Quantity:         e.Quantity.Float64(),
		Date:             e.Date,
		Note:             e.Note,
	}
	if !id.IsNil(e.FieldID) {
		resp.FieldID = e.FieldID.String()
	}
	if e.Product != nil {
		resp.Product = &RefResponse{ID: e.Product.ID.String(), Name: e.Product.Name, Unit: e.Product.Unit}
	}
	if e.Field != nil {
		resp.Field = &RefResponse{ID: e.Field.ID.String(), Name: e.Field.Name}
	}
	return resp
}
