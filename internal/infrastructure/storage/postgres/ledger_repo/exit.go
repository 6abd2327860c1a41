package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/domain/ledger"
	"agrostock/internal/infrastructure/storage/postgres"
)

const exitsTable = "doc_stock_exits"

var exitCols = []string{
	"id", "tenant_id", "deletion_mark", "version",
	"created_at", "updated_at", "user_id",
	"number", "type", "product_id", "field_id",
	"quantity", "date", "note",
}

// exitRow carries an exit together with joined reference names.
type exitRow struct {
	ledger.Exit
	ProductName string `db:"product_name"`
	ProductUnit string `db:"product_unit"`
	FieldName   string `db:"field_name"`
}

func (r exitRow) toExit() *ledger.Exit {
	e := r.Exit
	e.Product = &ledger.ProductRef{ID: e.ProductID, Name: r.ProductName, Unit: r.ProductUnit}
	if !id.IsNil(e.FieldID) {
		e.Field = &ledger.FieldRef{ID: e.FieldID, Name: r.FieldName}
	}
	return &e
}

// ExitRepo implements ledger.ExitRepository.
type ExitRepo struct {
	tx      *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewExitRepo creates a new exit repository.
func NewExitRepo(tx *postgres.TxManager) *ExitRepo {
	return &ExitRepo{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.ExitRepository = (*ExitRepo)(nil)

// Create inserts a new exit movement.
func (r *ExitRepo) Create(ctx context.Context, exit *ledger.Exit) error {
	data := postgres.StructToMap(exit)

	filteredData := make(map[string]any, len(exitCols))
	for _, col := range exitCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.
		Insert(exitsTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert exit: %w", err)
	}

	return nil
}

func (r *ExitRepo) joinedSelect(tenantID id.ID) squirrel.SelectBuilder {
	cols := make([]string, 0, len(exitCols)+3)
	for _, col := range exitCols {
		cols = append(cols, "e."+col)
	}
	cols = append(cols,
		"COALESCE(p.name, '') AS product_name",
		"COALESCE(p.unit, '') AS product_unit",
		"COALESCE(f.name, '') AS field_name",
	)

	return r.builder.
		Select(cols...).
		From(exitsTable + " e").
		LeftJoin("cat_products p ON p.id = e.product_id AND p.tenant_id = e.tenant_id").
		LeftJoin("cat_fields f ON f.id = e.field_id AND f.tenant_id = e.tenant_id").
		Where(squirrel.Eq{"e.tenant_id": tenantID})
}

// GetByID retrieves a non-deleted exit with its references resolved.
func (r *ExitRepo) GetByID(ctx context.Context, tenantID, exitID id.ID) (*ledger.Exit, error) {
	q := r.joinedSelect(tenantID).
		Where(squirrel.Eq{"e.id": exitID}).
		Where(squirrel.Eq{"e.deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row exitRow
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("exit", exitID.String())
		}
		return nil, fmt.Errorf("get exit: %w", err)
	}

	return row.toExit(), nil
}

// Update persists the row with optimistic locking on version.
func (r *ExitRepo) Update(ctx context.Context, exit *ledger.Exit) error {
	data := postgres.StructToMap(exit)

	filteredData := make(map[string]any, len(exitCols))
	for _, col := range exitCols {
		switch col {
		case "id", "tenant_id", "number", "created_at", "user_id", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.
		Update(exitsTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": exit.ID}).
		Where(squirrel.Eq{"tenant_id": exit.TenantID}).
		Where(squirrel.Eq{"version": exit.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update exit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("exit", exit.ID)
	}

	return nil
}

// Delete soft-deletes the exit. The service returns the stock first.
func (r *ExitRepo) Delete(ctx context.Context, tenantID, exitID id.ID) error {
	q := r.builder.
		Update(exitsTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": exitID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete exit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("exit", exitID.String())
	}

	return nil
}

// List retrieves exits with filtering and pagination, newest first.
func (r *ExitRepo) List(ctx context.Context, tenantID id.ID, filter ledger.ExitFilter) (ledger.MovementPage[*ledger.Exit], error) {
	var page ledger.MovementPage[*ledger.Exit]

	q := r.joinedSelect(tenantID).
		Where(squirrel.Eq{"e.deletion_mark": false})

	if !id.IsNil(filter.ProductID) {
		q = q.Where(squirrel.Eq{"e.product_id": filter.ProductID})
	}
	if !id.IsNil(filter.FieldID) {
		q = q.Where(squirrel.Eq{"e.field_id": filter.FieldID})
	}
	if !id.IsNil(filter.UserID) {
		q = q.Where(squirrel.Eq{"e.user_id": filter.UserID})
	}
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"e.date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"e.date": filter.To})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return page, fmt.Errorf("build count: %w", err)
	}

	querier := r.tx.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count exits: %w", err)
	}

	q = q.OrderBy("e.date DESC", "e.id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return page, fmt.Errorf("build query: %w", err)
	}

	var rows []exitRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return page, fmt.Errorf("list exits: %w", err)
	}

	page.Items = make([]*ledger.Exit, 0, len(rows))
	for _, row := range rows {
		page.Items = append(page.Items, row.toExit())
	}

	return page, nil
}

// ExistsByProduct reports whether any non-deleted exit references the product.
func (r *ExitRepo) ExistsByProduct(ctx context.Context, tenantID, productID id.ID) (bool, error) {
	return r.exists(ctx, tenantID, squirrel.Eq{"product_id": productID})
}

// ExistsByField reports whether any non-deleted exit references the field.
func (r *ExitRepo) ExistsByField(ctx context.Context, tenantID, fieldID id.ID) (bool, error) {
	return r.exists(ctx, tenantID, squirrel.Eq{"field_id": fieldID})
}

func (r *ExitRepo) exists(ctx context.Context, tenantID id.ID, cond squirrel.Eq) (bool, error) {
	q := r.builder.
		Select("1").
		From(exitsTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(cond).
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
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}
