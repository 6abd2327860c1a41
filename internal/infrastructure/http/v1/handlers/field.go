package handlers

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/field"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// FieldHandler handles field catalog endpoints.
type FieldHandler struct {
	*CatalogHandler[*field.Field, dto.CreateFieldRequest, dto.UpdateFieldRequest]
	service *field.Service
}

// NewFieldHandler creates a new field handler.
func NewFieldHandler(base *BaseHandler, svc *field.Service) *FieldHandler {
	return &FieldHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*field.Field, dto.CreateFieldRequest, dto.UpdateFieldRequest]{
			Service:    svc.CatalogService,
			EntityName: "field",
			MapCreateDTO: func(req dto.CreateFieldRequest, tenantID id.ID) (*field.Field, error) {
				return req.ToEntity(tenantID)
			},
			MapUpdateDTO: func(req dto.UpdateFieldRequest, existing *field.Field) error {
				return req.ApplyTo(existing)
			},
			MapToDTO: func(f *field.Field) any {
				return dto.FromField(f)
			},
		}),
		service: svc,
	}
}

// ListByFarm handles GET /farms/:id/fields.
func (h *FieldHandler) ListByFarm(c *gin.Context) {
	farmID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	fields, err := h.service.ListByFarm(c.Request.Context(), farmID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.FieldResponse, len(fields))
	for i, f := range fields {
		items[i] = dto.FromField(f)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      len(items),
		Offset:     0,
	})
}
