package ledger

import (
	"testing"
	"time"

	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

func TestApplyDeltaWeightedAverage(t *testing.T) {
	now := time.Now().UTC()
	tenantID, productID := id.New(), id.New()

	tests := []struct {
		name     string
		startQty float64
		startAvg string
		delta    float64
		cost     string
		wantQty  float64
		wantAvg  string
	}{
		{
			name:     "first entry sets the average",
			startQty: 0, startAvg: "0",
			delta: 10, cost: "5",
			wantQty: 10, wantAvg: "5",
		},
		{
			name:     "second entry blends the average",
			startQty: 10, startAvg: "5",
			delta: 10, cost: "10",
			wantQty: 20, wantAvg: "7.5",
		},
		{
			name:     "exit keeps the average when no cost attached",
			startQty: 20, startAvg: "7.5",
			delta: -8, cost: "0",
			wantQty: 12, wantAvg: "7.5",
		},
		{
			name:     "reversing an entry restores the previous average",
			startQty: 20, startAvg: "7.5",
			delta: -10, cost: "10",
			wantQty: 10, wantAvg: "5",
		},
		{
			name:     "reversing the only entry zeroes quantity and cost",
			startQty: 10, startAvg: "5",
			delta: -10, cost: "5",
			wantQty: 0, wantAvg: "0",
		},
		{
			name:     "fractional quantities blend without drift",
			startQty: 2.5, startAvg: "4",
			delta: 7.5, cost: "8",
			wantQty: 10, wantAvg: "7",
		},
		{
			name:     "negative blend result floors the average at zero",
			startQty: 10, startAvg: "1",
			delta: -5, cost: "100",
			wantQty: 5, wantAvg: "0",
		},
		{
			name:     "reversal below zero clamps quantity",
			startQty: 3, startAvg: "0",
			delta: -5, cost: "0",
			wantQty: 0, wantAvg: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := StockAggregate{
				TenantID:  tenantID,
				ProductID: productID,
				Quantity:  types.NewQuantityFromFloat64(tt.startQty),
				UnitCost:  types.MustCost(tt.startAvg),
			}
			got := agg.ApplyDelta(types.NewQuantityFromFloat64(tt.delta), types.MustCost(tt.cost), now)

			if got.Quantity != types.NewQuantityFromFloat64(tt.wantQty) {
				t.Errorf("quantity = %s, want %v", got.Quantity, tt.wantQty)
			}
			if !got.UnitCost.Equal(types.MustCost(tt.wantAvg)) {
				t.Errorf("unit cost = %s, want %s", got.UnitCost, tt.wantAvg)
			}
			if !got.LastUpdatedAt.Equal(now) {
				t.Errorf("last updated = %s, want %s", got.LastUpdatedAt, now)
			}
		})
	}
}

func TestNewAggregateClampsNegatives(t *testing.T) {
	agg := NewAggregate(id.New(), id.New(), types.NewQuantityFromFloat64(-3), types.MustCost("-1"), time.Now())
	if !agg.Quantity.IsZero() {
		t.Errorf("quantity = %s, want 0", agg.Quantity)
	}
	if !agg.UnitCost.IsZero() {
		t.Errorf("unit cost = %s, want 0", agg.UnitCost)
	}
}
