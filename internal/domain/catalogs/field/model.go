// Package field provides the field (talhão) catalog: the plots exits apply
// product to.
package field

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"

	"github.com/shopspring/decimal"
)

// Field is a plot inside a farm where product is applied.
type Field struct {
	entity.Catalog

	// FarmID is the farm the plot belongs to, if it is grouped under one
	FarmID id.ID `db:"farm_id" json:"farmId,omitempty"`

	// AreaHectares is the plot area
	AreaHectares decimal.Decimal `db:"area_hectares" json:"areaHectares"`

	// CurrentCrop is the crop planted this season, if any
	CurrentCrop string `db:"current_crop" json:"currentCrop,omitempty"`
}

// NewField creates a new Field with required fields.
func NewField(tenantID, farmID id.ID, code, name string) *Field {
	return &Field{
		Catalog: entity.NewCatalog(tenantID, code, name),
		FarmID:  farmID,
	}
}

// Validate implements entity.Validatable interface.
func (f *Field) Validate(ctx context.Context) error {
	if err := f.Catalog.Validate(ctx); err != nil {
		return err
	}
	if f.AreaHectares.Sign() <= 0 {
		return apperror.NewValidation("area must be positive").
			WithDetail("field", "areaHectares")
	}
	return nil
}
