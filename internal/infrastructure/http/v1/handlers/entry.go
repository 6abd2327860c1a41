package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/authz"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// EntryHandler handles stock entry endpoints.
type EntryHandler struct {
	*BaseHandler
	service   *ledger.EntryService
	evaluator *authz.Evaluator
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(base *BaseHandler, svc *ledger.EntryService, evaluator *authz.Evaluator) *EntryHandler {
	return &EntryHandler{BaseHandler: base, service: svc, evaluator: evaluator}
}

// Create handles POST /entries.
func (h *EntryHandler) Create(c *gin.Context) {
	var req dto.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entry, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), entry)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromEntry(created))
}

// Get handles GET /entries/:id.
func (h *EntryHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	entry, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(entry))
}

// List handles GET /entries.
func (h *EntryHandler) List(c *gin.Context) {
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

	items := make([]*dto.EntryResponse, len(page.Items))
	for i, e := range page.Items {
		items[i] = dto.FromEntry(e)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: page.Total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update handles PUT /entries/:id. Regular users may only update entries they
// recorded; the ownership check needs the stored row, so it happens here
// rather than in route middleware.
func (h *EntryHandler) Update(c *gin.Context) {
	entryID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if !h.authorize(c, authz.ActionUpdate, entryID) {
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), entryID, patch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(updated))
}

// Delete handles DELETE /entries/:id.
func (h *EntryHandler) Delete(c *gin.Context) {
	entryID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if !h.authorize(c, authz.ActionDelete, entryID) {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// authorize loads the entry and checks the caller against it, including the
// ownership condition.
func (h *EntryHandler) authorize(c *gin.Context, action authz.Action, entryID id.ID) bool {
	caller, ok := h.Caller(c)
	if !ok {
		return false
	}

	entry, err := h.service.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return false
	}

	err = h.evaluator.Authorize(caller, action, authz.Subject{
		Type:    authz.SubjectEntry,
		ID:      entry.ID.String(),
		OwnerID: entry.UserID.String(),
	})
	if err != nil {
		h.Error(c, err)
		return false
	}
	return true
}

func (h *EntryHandler) parseFilter(c *gin.Context) (ledger.EntryFilter, error) {
	filter := ledger.EntryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	var err error
	if filter.ProductID, err = parseIDQuery(c, "productId"); err != nil {
		return filter, err
	}
	if filter.SupplierID, err = parseIDQuery(c, "supplierId"); err != nil {
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

// parseIDQuery parses an optional UUID query parameter.
func parseIDQuery(c *gin.Context, key string) (id.ID, error) {
	val := c.Query(key)
	if val == "" {
		return id.Nil(), nil
	}
	parsed, err := id.Parse(val)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid " + key + " format")
	}
	return parsed, nil
}

// parseTimeQuery parses an optional RFC 3339 timestamp query parameter.
func parseTimeQuery(c *gin.Context, key string) (time.Time, error) {
	val := c.Query(key)
	if val == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid " + key + " timestamp (RFC 3339 expected)")
	}
	return parsed, nil
}
