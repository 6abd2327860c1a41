package handlers

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/supplier"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles supplier catalog endpoints.
type SupplierHandler struct {
	*CatalogHandler[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, svc *supplier.Service) *SupplierHandler {
	return &SupplierHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.CreateSupplierRequest, dto.UpdateSupplierRequest]{
			Service:    svc.CatalogService,
			EntityName: "supplier",
			MapCreateDTO: func(req dto.CreateSupplierRequest, tenantID id.ID) (*supplier.Supplier, error) {
				return req.ToEntity(tenantID), nil
			},
			MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) error {
				req.ApplyTo(existing)
				return nil
			},
			MapToDTO: func(s *supplier.Supplier) any {
				return dto.FromSupplier(s)
			},
		}),
		service: svc,
	}
}

// FindByDocument handles GET /suppliers/by-document?document=...
func (h *SupplierHandler) FindByDocument(c *gin.Context) {
	document := c.Query("document")
	if document == "" {
		h.Error(c, apperror.NewValidation("document query parameter is required"))
		return
	}

	sup, err := h.service.FindByDocument(c.Request.Context(), document)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSupplier(sup))
}
