// Package ledger implements the stock-ledger consistency engine: one
// aggregate row per (tenant, product) holding current quantity and weighted
// average unit cost, mutated only through atomic reverse-then-reapply
// sequences driven by entry and exit movement lifecycles.
package ledger

import (
	"context"
	"time"

	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

// StockAggregate is the single current-state row per (tenant, product).
// It is the unit of consistency: after every committed operation it must equal
// the replay of all non-deleted movements for that product.
type StockAggregate struct {
	TenantID  id.ID `db:"tenant_id" json:"tenantId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity currently in stock. Never negative after a successful operation.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitCost is the quantity-weighted mean unit cost, recomputed on each
	// cost-bearing entry. Exits never change it.
	UnitCost types.Cost `db:"unit_cost" json:"unitCost"`

	LastUpdatedAt time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
}

// ApplyDelta returns the aggregate after applying a movement effect.
//
// The same blend formula serves both directions: applying an entry passes
// (+qty, unitCost) and reversing it passes (-qty, unitCost), which is the
// inverse blend restoring the pre-entry average. Exits pass a zero cost and
// leave the average untouched.
//
// Quantity is clamped at zero on the reversal path: reversal compensates data
// already committed, so a would-be negative floor is truncated rather than
// rejected. The cost is likewise floored at zero, and forced to zero whenever
// the resulting quantity is not positive.
func (a StockAggregate) ApplyDelta(delta types.Quantity, incomingCost types.Cost, now time.Time) StockAggregate {
	next := a
	next.LastUpdatedAt = now

	newQty := a.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	next.Quantity = newQty

	if incomingCost.IsPositive() && !delta.IsZero() {
		denom := a.Quantity.Decimal().Add(delta.Decimal())
		if denom.Sign() <= 0 {
			next.UnitCost = types.ZeroCost()
			return next
		}
		blended := a.UnitCost.Mul(a.Quantity.Decimal()).
			Add(incomingCost.Mul(delta.Decimal())).
			Div(denom)
		if blended.Sign() < 0 {
			blended = types.ZeroCost()
		}
		next.UnitCost = blended
	}

	return next
}

// NewAggregate creates a lazily-initialized aggregate for the first movement
// affecting a product.
func NewAggregate(tenantID, productID id.ID, qty types.Quantity, cost types.Cost, now time.Time) StockAggregate {
	if qty < 0 {
		qty = 0
	}
	if cost.Sign() < 0 {
		cost = types.ZeroCost()
	}
	return StockAggregate{
		TenantID:      tenantID,
		ProductID:     productID,
		Quantity:      qty,
		UnitCost:      cost,
		LastUpdatedAt: now,
	}
}

// AggregateFilter narrows aggregate listings.
type AggregateFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
	Limit       int
	Offset      int
}

// AggregateStore is the single shared contract both movement lifecycles
// mutate stock through. Implementations must serialize concurrent mutations
// per (tenant, product): GetForUpdate takes a row lock inside the open
// transaction, and Apply is only called with that lock held.
type AggregateStore interface {
	// Get returns the aggregate, or found=false when no movement has touched
	// the product yet (callers treat that as zero stock).
	Get(ctx context.Context, tenantID, productID id.ID) (StockAggregate, bool, error)

	// GetForUpdate is Get with a pessimistic row lock. Must be called inside
	// a transaction before any read-modify-write of the aggregate.
	GetForUpdate(ctx context.Context, tenantID, productID id.ID) (StockAggregate, bool, error)

	// Apply upserts the aggregate with the movement effect: creates it lazily
	// on first use, otherwise applies ApplyDelta semantics.
	Apply(ctx context.Context, tenantID, productID id.ID, delta types.Quantity, incomingCost types.Cost) (StockAggregate, error)

	// AssertSufficient fails with INSUFFICIENT_STOCK when current quantity is
	// below required, reporting the available quantity.
	AssertSufficient(ctx context.Context, tenantID, productID id.ID, required types.Quantity) error

	// List returns aggregates for reporting endpoints.
	List(ctx context.Context, tenantID id.ID, filter AggregateFilter) ([]StockAggregate, error)
}
