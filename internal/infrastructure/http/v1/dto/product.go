package dto

import (
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name" binding:"required"`
	Category    product.Category `json:"category" binding:"required"`
	Unit        product.Unit     `json:"unit" binding:"required"`
	Description string           `json:"description"`
	MinStock    float64          `json:"minStock"`
}

// ToEntity converts the DTO to a domain entity owned by the tenant.
func (r *CreateProductRequest) ToEntity(tenantID id.ID) *product.Product {
	p := product.NewProduct(tenantID, r.Code, r.Name, r.Category, r.Unit)
	p.Description = r.Description
	p.MinStock = types.NewQuantityFromFloat64(r.MinStock)
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Category    product.Category `json:"category" binding:"required"`
	Unit        product.Unit     `json:"unit" binding:"required"`
	Description string           `json:"description"`
	MinStock    float64          `json:"minStock"`
	Version     int              `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Name = r.Name
	p.Category = r.Category
	p.Unit = r.Unit
	p.Description = r.Description
	p.MinStock = types.NewQuantityFromFloat64(r.MinStock)
	p.Version = r.Version
}

// ProductResponse is the response body for a product.
type ProductResponse struct {
	CatalogResponse
	Category    product.Category `json:"category"`
	Unit        product.Unit     `json:"unit"`
	Description string           `json:"description,omitempty"`
	MinStock    float64          `json:"minStock"`
}

// FromProduct creates a response DTO from a domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Category:        p.Category,
		Unit:            p.Unit,
		Description:     p.Description,
		MinStock:        p.MinStock.Float64(),
	}
}
