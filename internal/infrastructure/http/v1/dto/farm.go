package dto

import (
	"github.com/shopspring/decimal"

	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/farm"
)

// CreateFarmRequest is the request body for creating a farm.
type CreateFarmRequest struct {
	Code              string          `json:"code"`
	Name              string          `json:"name" binding:"required"`
	Location          string          `json:"location"`
	AreaHectares      decimal.Decimal `json:"areaHectares"`
	StateRegistration string          `json:"stateRegistration"`
}

// ToEntity converts the DTO to a domain entity owned by the tenant.
func (r *CreateFarmRequest) ToEntity(tenantID id.ID) *farm.Farm {
	f := farm.NewFarm(tenantID, r.Code, r.Name)
	f.Location = r.Location
	f.AreaHectares = r.AreaHectares
	f.StateRegistration = r.StateRegistration
	return f
}

// UpdateFarmRequest is the request body for updating a farm.
type UpdateFarmRequest struct {
	Name              string          `json:"name" binding:"required"`
	Location          string          `json:"location"`
	AreaHectares      decimal.Decimal `json:"areaHectares"`
	StateRegistration string          `json:"stateRegistration"`
	Version           int             `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateFarmRequest) ApplyTo(f *farm.Farm) {
	f.Name = r.Name
	f.Location = r.Location
	f.AreaHectares = r.AreaHectares
	f.StateRegistration = r.StateRegistration
	f.Version = r.Version
}

// FarmResponse is the response body for a farm.
type FarmResponse struct {
	CatalogResponse
	Location          string          `json:"location,omitempty"`
	AreaHectares      decimal.Decimal `json:"areaHectares"`
	StateRegistration string          `json:"stateRegistration,omitempty"`
}

// FromFarm creates a response DTO from a domain entity.
func FromFarm(f *farm.Farm) *FarmResponse {
	return &FarmResponse{
		CatalogResponse:   FromCatalog(f.Catalog),
		Location:          f.Location,
		AreaHectares:      f.AreaHectares,
		StateRegistration: f.StateRegistration,
	}
}
