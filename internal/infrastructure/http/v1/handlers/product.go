package handlers

import (
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/product"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, svc *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:    svc.CatalogService,
			EntityName: "product",
			MapCreateDTO: func(req dto.CreateProductRequest, tenantID id.ID) (*product.Product, error) {
				return req.ToEntity(tenantID), nil
			},
			MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) error {
				req.ApplyTo(existing)
				return nil
			},
			MapToDTO: func(p *product.Product) any {
				return dto.FromProduct(p)
			},
		}),
	}
}
