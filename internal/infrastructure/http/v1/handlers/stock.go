package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes read-only stock aggregate endpoints.
type StockHandler struct {
	*BaseHandler
	store ledger.AggregateStore
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, store ledger.AggregateStore) *StockHandler {
	return &StockHandler{BaseHandler: base, store: store}
}

// List handles GET /stock/aggregates.
func (h *StockHandler) List(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	filter := ledger.AggregateFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 50),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}
	for _, raw := range c.QueryArray("productId") {
		productID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}
		filter.ProductIDs = append(filter.ProductIDs, productID)
	}

	aggregates, err := h.store.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockAggregateResponse, len(aggregates))
	for i, a := range aggregates {
		items[i] = dto.FromAggregate(a)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Get handles GET /stock/aggregates/:productId. A product no movement has
// touched reads as zero stock rather than 404.
func (h *StockHandler) Get(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	agg, found, err := h.store.Get(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !found {
		agg = ledger.NewAggregate(tenantID, productID, 0, types.ZeroCost(), time.Time{})
	}

	h.OK(c, dto.FromAggregate(agg))
}
