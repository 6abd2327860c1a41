package entity

import (
	"context"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
)

// Catalog is the base type for reference data: products, suppliers, fields,
// farms. Code is unique within a tenant and may be auto-generated.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (unique within tenant)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(tenantID id.ID, code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(tenantID),
		Code:       code,
		Name:       name,
	}
}

// GetCode returns the catalog code.
func (c *Catalog) GetCode() string { return c.Code }

// SetCode assigns the catalog code (used for auto-generated codes).
func (c *Catalog) SetCode(code string) { c.Code = code }

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(c.TenantID) {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}
	return nil
}
