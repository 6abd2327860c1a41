package handlers

import (
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/farm"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// FarmHandler handles farm catalog endpoints.
type FarmHandler struct {
	*CatalogHandler[*farm.Farm, dto.CreateFarmRequest, dto.UpdateFarmRequest]
}

// NewFarmHandler creates a new farm handler.
func NewFarmHandler(base *BaseHandler, svc *farm.Service) *FarmHandler {
	return &FarmHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*farm.Farm, dto.CreateFarmRequest, dto.UpdateFarmRequest]{
			Service:    svc.CatalogService,
			EntityName: "farm",
			MapCreateDTO: func(req dto.CreateFarmRequest, tenantID id.ID) (*farm.Farm, error) {
				return req.ToEntity(tenantID), nil
			},
			MapUpdateDTO: func(req dto.UpdateFarmRequest, existing *farm.Farm) error {
				req.ApplyTo(existing)
				return nil
			},
			MapToDTO: func(f *farm.Farm) any {
				return dto.FromFarm(f)
			},
		}),
	}
}
