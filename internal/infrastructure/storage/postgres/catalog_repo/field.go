package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/field"
	"agrostock/internal/infrastructure/storage/postgres"
)

const fieldTable = "cat_fields"

// FieldRepo implements field.Repository.
type FieldRepo struct {
	*BaseCatalogRepo[*field.Field]
}

// NewFieldRepo creates a new field repository.
func NewFieldRepo(tx *postgres.TxManager) *FieldRepo {
	return &FieldRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			tx,
			fieldTable,
			postgres.ExtractDBColumns[field.Field](),
			func() *field.Field { return &field.Field{} },
		),
	}
}

// FarmHasFields reports whether any active field still belongs to the farm.
// Drives the farm delete dispatch.
func (r *FieldRepo) FarmHasFields(ctx context.Context, farmID id.ID) (bool, error) {
	q, err := r.TenantScoped(ctx)
	if err != nil {
		return false, err
	}

	sql, args, err := q.
		Where(squirrel.Eq{"farm_id": farmID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var items []*field.Field
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return false, fmt.Errorf("check farm fields: %w", err)
	}
	return len(items) > 0, nil
}

// ListByFarm returns all active fields belonging to a farm, ordered by name.
func (r *FieldRepo) ListByFarm(ctx context.Context, farmID id.ID) ([]*field.Field, error) {
	q, err := r.TenantScoped(ctx)
	if err != nil {
		return nil, err
	}

	q = q.
		Where(squirrel.Eq{"farm_id": farmID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*field.Field
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by farm: %w", err)
	}

	return items, nil
}
