package dto

import (
	"time"

	"agrostock/internal/domain/ledger"
)

// StockAggregateResponse is the current stock position of one product.
type StockAggregateResponse struct {
	ProductID     string    `json:"productId"`
	Quantity      float64   `json:"quantity"`
	UnitCost      string    `json:"unitCost"`
	TotalValue    string    `json:"totalValue"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// FromAggregate creates a response DTO from a stock aggregate.
func FromAggregate(a ledger.StockAggregate) StockAggregateResponse {
	return StockAggregateResponse{
		ProductID:     a.ProductID.String(),
		Quantity:      a.Quantity.Float64(),
		UnitCost:      a.UnitCost.String(),
		TotalValue:    a.UnitCost.Mul(a.Quantity.Decimal()).String(),
		LastUpdatedAt: a.LastUpdatedAt,
	}
}
