// Package farm provides the farm catalog: the properties fields belong to.
package farm

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"

	"github.com/shopspring/decimal"
)

// Farm is a property owned or operated by the tenant.
type Farm struct {
	entity.Catalog

	// Location is a free-form address or municipality
	Location string `db:"location" json:"location,omitempty"`

	// AreaHectares is the total property area
	AreaHectares decimal.Decimal `db:"area_hectares" json:"areaHectares"`

	// StateRegistration is the rural property registration number
	StateRegistration string `db:"state_registration" json:"stateRegistration,omitempty"`
}

// NewFarm creates a new Farm with required fields.
func NewFarm(tenantID id.ID, code, name string) *Farm {
	return &Farm{
		Catalog: entity.NewCatalog(tenantID, code, name),
	}
}

// Validate implements entity.Validatable interface.
func (f *Farm) Validate(ctx context.Context) error {
	if err := f.Catalog.Validate(ctx); err != nil {
		return err
	}
	if f.AreaHectares.Sign() < 0 {
		return apperror.NewValidation("area cannot be negative").
			WithDetail("field", "areaHectares")
	}
	return nil
}
