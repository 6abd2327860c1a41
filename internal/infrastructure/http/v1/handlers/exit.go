package handlers

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/core/id"
	"agrostock/internal/domain/authz"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// ExitHandler handles stock exit endpoints.
type ExitHandler struct {
	*BaseHandler
	service   *ledger.ExitService
	evaluator *authz.Evaluator
}

// NewExitHandler creates a new exit handler.
func NewExitHandler(base *BaseHandler, svc *ledger.ExitService, evaluator *authz.Evaluator) *ExitHandler {
	return &ExitHandler{BaseHandler: base, service: svc, evaluator: evaluator}
}

// Create handles POST /exits.
func (h *ExitHandler) Create(c *gin.Context) {
	var req dto.CreateExitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	exit, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), exit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromExit(created))
}

// Get handles GET /exits/:id.
func (h *ExitHandler) Get(c *gin.Context) {
	exitID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	exit, err := h.service.GetByID(c.Request.Context(), exitID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromExit(exit))
}

// List handles GET /exits.
func (h *ExitHandler) List(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ExitResponse, len(page.Items))
	for i, e := range page.Items {
		items[i] = dto.FromExit(e)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: page.Total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update handles PUT /exits/:id. Ownership is checked against the stored row.
func (h *ExitHandler) Update(c *gin.Context) {
	exitID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateExitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if !h.authorize(c, authz.ActionUpdate, exitID) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), exitID, patch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromExit(updated))
}

// Delete handles DELETE /exits/:id.
func (h *ExitHandler) Delete(c *gin.Context) {
	exitID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if !h.authorize(c, authz.ActionDelete, exitID) {
		return
	}

	if err := h.service.Delete(c.Request.Context(), exitID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ExitHandler) authorize(c *gin.Context, action authz.Action, exitID id.ID) bool {
	caller, ok := h.Caller(c)
	if !ok {
		return false
	}

	exit, err := h.service.GetByID(c.Request.Context(), exitID)
	if err != nil {
		h.Error(c, err)
		return false
	}

	err = h.evaluator.Authorize(caller, action, authz.Subject{
		Type:    authz.SubjectExit,
		ID:      exit.ID.String(),
		OwnerID: exit.UserID.String(),
	})
	if err != nil {
		h.Error(c, err)
		return false
	}
	return true
}

func (h *ExitHandler) parseFilter(c *gin.Context) (ledger.ExitFilter, error) {
	filter := ledger.ExitFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.ProductID, err = parseIDQuery(c, "productId"); err != nil {
		return filter, err
	}
	if filter.FieldID, err = parseIDQuery(c, "fieldId"); err != nil {
		return filter, err
	}
	if filter.UserID, err = parseIDQuery(c, "userId"); err != nil {
		return filter, err
	}
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}
