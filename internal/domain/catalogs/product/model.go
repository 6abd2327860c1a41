// Package product provides the agricultural input catalog: fertilizers,
// seeds, crop protection and the other stock-managed items.
package product

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

// Category groups products for reporting and filtering.
type Category string

const (
	CategoryFertilizer Category = "fertilizer"
	CategorySeed       Category = "seed"
	CategoryDefensive  Category = "defensive" // crop protection
	CategoryFuel       Category = "fuel"
	CategoryPart       Category = "part" // machine parts
	CategoryOther      Category = "other"
)

// Unit is the measurement unit stock is tracked in.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "l"
	UnitSack     Unit = "sack"
	UnitTon      Unit = "t"
	UnitUnit     Unit = "un"
)

// Product is an agricultural input tracked in stock.
type Product struct {
	entity.Catalog

	Category Category `db:"category" json:"category"`
	Unit     Unit     `db:"unit" json:"unit"`

	// Description is a free-form note
	Description string `db:"description" json:"description,omitempty"`

	// MinStock triggers the low-stock report when the aggregate falls below it
	MinStock types.Quantity `db:"min_stock" json:"minStock"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(tenantID id.ID, code, name string, category Category, unit Unit) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(tenantID, code, name),
		Category: category,
		Unit:     unit,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if !isValidCategory(p.Category) {
		return apperror.NewValidation("invalid product category").
			WithDetail("field", "category").
			WithDetail("value", string(p.Category))
	}
	if !isValidUnit(p.Unit) {
		return apperror.NewValidation("invalid measurement unit").
			WithDetail("field", "unit").
			WithDetail("value", string(p.Unit))
	}
	if p.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}
	return nil
}

func isValidCategory(c Category) bool {
	switch c {
	case CategoryFertilizer, CategorySeed, CategoryDefensive, CategoryFuel, CategoryPart, CategoryOther:
		return true
	}
	return false
}

func isValidUnit(u Unit) bool {
	switch u {
	case UnitKilogram, UnitLiter, UnitSack, UnitTon, UnitUnit:
		return true
	}
	return false
}
