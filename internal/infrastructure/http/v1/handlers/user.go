package handlers

import (
	"github.com/gin-gonic/gin"

	"agrostock/internal/domain/auth"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// UserHandler handles tenant user administration endpoints.
type UserHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, svc *auth.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, service: svc}
}

// Create handles POST /users.
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(user))
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	users, total, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, len(users))
	for i, u := range users {
		items[i] = dto.FromUser(u)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	userID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// Deactivate handles DELETE /users/:id. Accounts are deactivated, never
// removed, so movement history keeps its recording user.
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), userID, false); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetActive handles PUT /users/:id/active.
func (h *UserHandler) SetActive(c *gin.Context) {
	userID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(c.Request.Context(), userID, req.Active); err != nil {
		h.Error(c, err)
		return
	}

	if req.Active {
		h.Success(c, "user activated")
		return
	}
	h.Success(c, "user deactivated")
}
