package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"agrostock/internal/core/id"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/storage/postgres"
)

// CatalogResolver implements ledger.ReferenceResolver against the catalog
// tables. Only active rows count: a deactivated product cannot receive new
// movements.
type CatalogResolver struct {
	tx      *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCatalogResolver creates a new reference resolver.
func NewCatalogResolver(tx *postgres.TxManager) *CatalogResolver {
	return &CatalogResolver{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.ReferenceResolver = (*CatalogResolver)(nil)

// ProductExists reports whether an active product exists within the tenant.
func (r *CatalogResolver) ProductExists(ctx context.Context, tenantID, productID id.ID) (bool, error) {
	return r.exists(ctx, "cat_products", tenantID, productID)
}

// SupplierExists reports whether an active supplier exists within the tenant.
func (r *CatalogResolver) SupplierExists(ctx context.Context, tenantID, supplierID id.ID) (bool, error) {
	return r.exists(ctx, "cat_suppliers", tenantID, supplierID)
}

// FieldExists reports whether an active field exists within the tenant.
func (r *CatalogResolver) FieldExists(ctx context.Context, tenantID, fieldID id.ID) (bool, error) {
	return r.exists(ctx, "cat_fields", tenantID, fieldID)
}

func (r *CatalogResolver) exists(ctx context.Context, table string, tenantID, entityID id.ID) (bool, error) {
	q := r.builder.
		Select("1").
		From(table).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}

	return true, nil
}
