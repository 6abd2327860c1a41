package dto

import (
	"github.com/shopspring/decimal"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/field"
)

func parseFarmID(raw string) (id.ID, error) {
	if raw == "" {
		return id.Nil(), nil
	}
	farmID, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid farmId format").WithDetail("field", "farmId")
	}
	return farmID, nil
}

// CreateFieldRequest is the request body for creating a field. The farm is
// optional; ungrouped plots stand alone.
type CreateFieldRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name" binding:"required"`
	FarmID       string          `json:"farmId"`
	AreaHectares decimal.Decimal `json:"areaHectares"`
	CurrentCrop  string          `json:"currentCrop"`
}

// ToEntity converts the DTO to a domain entity owned by the tenant.
func (r *CreateFieldRequest) ToEntity(tenantID id.ID) (*field.Field, error) {
	farmID, err := parseFarmID(r.FarmID)
	if err != nil {
		return nil, err
	}
	f := field.NewField(tenantID, farmID, r.Code, r.Name)
	f.AreaHectares = r.AreaHectares
	f.CurrentCrop = r.CurrentCrop
	return f, nil
}

// UpdateFieldRequest is the request body for updating a field.
type UpdateFieldRequest struct {
	Name         string          `json:"name" binding:"required"`
	FarmID       string          `json:"farmId"`
	AreaHectares decimal.Decimal `json:"areaHectares"`
	CurrentCrop  string          `json:"currentCrop"`
	Version      int             `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateFieldRequest) ApplyTo(f *field.Field) error {
	farmID, err := parseFarmID(r.FarmID)
	if err != nil {
		return err
	}
	f.Name = r.Name
	f.FarmID = farmID
	f.AreaHectares = r.AreaHectares
	f.CurrentCrop = r.CurrentCrop
	f.Version = r.Version
	return nil
}

// FieldResponse is the response body for a field.
type FieldResponse struct {
	CatalogResponse
	FarmID       string          `json:"farmId,omitempty"`
	AreaHectares decimal.Decimal `json:"areaHectares"`
	CurrentCrop  string          `json:"currentCrop,omitempty"`
}

// FromField creates a response DTO from a domain entity.
func FromField(f *field.Field) *FieldResponse {
	resp := &FieldResponse{
		CatalogResponse: FromCatalog(f.Catalog),
		AreaHectares:    f.AreaHectares,
		CurrentCrop:     f.CurrentCrop,
	}
	if !id.IsNil(f.FarmID) {
		resp.FarmID = f.FarmID.String()
	}
	return resp
}
