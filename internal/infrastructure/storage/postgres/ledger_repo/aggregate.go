// Package ledger_repo provides PostgreSQL persistence for the stock ledger:
// entry and exit movements plus the per-product stock aggregates.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/storage/postgres"
)

const aggregatesTable = "reg_stock_aggregates"

// AggregateRepo implements ledger.AggregateStore on a single upsert-managed
// table keyed by (tenant_id, product_id).
type AggregateRepo struct {
	tx      *postgres.TxManager
	builder squirrel.StatementBuilderType
	// clock is swappable for tests
	clock func() time.Time
}

// NewAggregateRepo creates a new stock aggregate store.
func NewAggregateRepo(tx *postgres.TxManager) *AggregateRepo {
	return &AggregateRepo{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		clock:   time.Now,
	}
}

var _ ledger.AggregateStore = (*AggregateRepo)(nil)

// Get returns the aggregate, or found=false when the product has no stock
// row yet.
func (r *AggregateRepo) Get(ctx context.Context, tenantID, productID id.ID) (ledger.StockAggregate, bool, error) {
	return r.get(ctx, tenantID, productID, false)
}

// GetForUpdate is Get with a row lock. Only meaningful inside a transaction.
func (r *AggregateRepo) GetForUpdate(ctx context.Context, tenantID, productID id.ID) (ledger.StockAggregate, bool, error) {
	return r.get(ctx, tenantID, productID, true)
}

func (r *AggregateRepo) get(ctx context.Context, tenantID, productID id.ID, forUpdate bool) (ledger.StockAggregate, bool, error) {
	var agg ledger.StockAggregate

	q := r.builder.
		Select("tenant_id", "product_id", "quantity", "unit_cost", "last_updated_at").
		From(aggregatesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"product_id": productID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return agg, false, fmt.Errorf("build query: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &agg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.StockAggregate{}, false, nil
		}
		return agg, false, fmt.Errorf("get aggregate: %w", err)
	}

	return agg, true, nil
}

// Apply upserts the aggregate with the movement effect. Callers hold the row
// lock via GetForUpdate inside the surrounding transaction, so the read here
// observes the locked row state.
func (r *AggregateRepo) Apply(ctx context.Context, tenantID, productID id.ID, delta types.Quantity, incomingCost types.Cost) (ledger.StockAggregate, error) {
	now := r.clock().UTC()

	current, found, err := r.get(ctx, tenantID, productID, false)
	if err != nil {
		return ledger.StockAggregate{}, err
	}

	var next ledger.StockAggregate
	if !found {
		next = ledger.NewAggregate(tenantID, productID, delta, incomingCost, now)
	} else {
		next = current.ApplyDelta(delta, incomingCost, now)
	}

	sql := `
		INSERT INTO reg_stock_aggregates (tenant_id, product_id, quantity, unit_cost, last_updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, product_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    unit_cost = EXCLUDED.unit_cost,
		    last_updated_at = EXCLUDED.last_updated_at
	`

	querier := r.tx.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, next.TenantID, next.ProductID, next.Quantity, next.UnitCost, next.LastUpdatedAt); err != nil {
		return ledger.StockAggregate{}, fmt.Errorf("upsert aggregate: %w", err)
	}

	return next, nil
}

// AssertSufficient fails when current stock is below the required quantity.
func (r *AggregateRepo) AssertSufficient(ctx context.Context, tenantID, productID id.ID, required types.Quantity) error {
	current, found, err := r.get(ctx, tenantID, productID, false)
	if err != nil {
		return err
	}

	available := types.Quantity(0)
	if found {
		available = current.Quantity
	}

	if available < required {
		return apperror.NewInsufficientStock(productID.String(), required.Float64(), available.Float64())
	}

	return nil
}

// List returns aggregates for reporting endpoints, ordered by product.
func (r *AggregateRepo) List(ctx context.Context, tenantID id.ID, filter ledger.AggregateFilter) ([]ledger.StockAggregate, error) {
	q := r.builder.
		Select("tenant_id", "product_id", "quantity", "unit_cost", "last_updated_at").
		From(aggregatesTable).
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	q = q.OrderBy("product_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var aggregates []ledger.StockAggregate
	querier := r.tx.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &aggregates, sql, args...); err != nil {
		return nil, fmt.Errorf("select aggregates: %w", err)
	}

	return aggregates, nil
}
