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

const entriesTable = "doc_stock_entries"

var entryCols = []string{
	"id", "tenant_id", "deletion_mark", "version",
	"created_at", "updated_at", "user_id",
	"number", "type", "product_id", "supplier_id",
	"quantity", "unit_cost", "date", "note",
}

// entryRow carries an entry together with joined reference names.
type entryRow struct {
	ledger.Entry
	ProductName  string `db:"product_name"`
	ProductUnit  string `db:"product_unit"`
	SupplierName string `db:"supplier_name"`
}

func (r entryRow) toEntry() *ledger.Entry {
	e := r.Entry
	e.Product = &ledger.ProductRef{ID: e.ProductID, Name: r.ProductName, Unit: r.ProductUnit}
	if !id.IsNil(e.SupplierID) {
		e.Supplier = &ledger.PartnerRef{ID: e.SupplierID, Name: r.SupplierName}
	}
	return &e
}

// EntryRepo implements ledger.EntryRepository.
type EntryRepo struct {
	tx      *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewEntryRepo creates a new entry repository.
func NewEntryRepo(tx *postgres.TxManager) *EntryRepo {
	return &EntryRepo{
		tx:      tx,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.EntryRepository = (*EntryRepo)(nil)

// Create inserts a new entry movement.
func (r *EntryRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	data := postgres.StructToMap(entry)

	filteredData := make(map[string]any, len(entryCols))
	for _, col := range entryCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.
		Insert(entriesTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// joinedSelect selects entries with product and supplier names attached.
func (r *EntryRepo) joinedSelect(tenantID id.ID) squirrel.SelectBuilder {
	cols := make([]string, 0, len(entryCols)+3)
	for _, col := range entryCols {
		cols = append(cols, "e."+col)
	}
	cols = append(cols,
		"COALESCE(p.name, '') AS product_name",
		"COALESCE(p.unit, '') AS product_unit",
		"COALESCE(s.name, '') AS supplier_name",
	)

	return r.builder.
		Select(cols...).
		From(entriesTable + " e").
		LeftJoin("cat_products p ON p.id = e.product_id AND p.tenant_id = e.tenant_id").
		LeftJoin("cat_suppliers s ON s.id = e.supplier_id AND s.tenant_id = e.tenant_id").
		Where(squirrel.Eq{"e.tenant_id": tenantID})
}

// GetByID retrieves a non-deleted entry with its references resolved.
func (r *EntryRepo) GetByID(ctx context.Context, tenantID, entryID id.ID) (*ledger.Entry, error) {
	q := r.joinedSelect(tenantID).
		Where(squirrel.Eq{"e.id": entryID}).
		Where(squirrel.Eq{"e.deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row entryRow
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("entry", entryID.String())
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	return row.toEntry(), nil
}

// Update persists the row with optimistic locking on version.
func (r *EntryRepo) Update(ctx context.Context, entry *ledger.Entry) error {
	data := postgres.StructToMap(entry)

	filteredData := make(map[string]any, len(entryCols))
	for _, col := range entryCols {
		switch col {
		case "id", "tenant_id", "number", "created_at", "user_id", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.
		Update(entriesTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entry.ID}).
		Where(squirrel.Eq{"tenant_id": entry.TenantID}).
		Where(squirrel.Eq{"version": entry.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("entry", entry.ID)
	}

	return nil
}

// Delete soft-deletes the entry. The service reverses the stock effect first.
func (r *EntryRepo) Delete(ctx context.Context, tenantID, entryID id.ID) error {
	q := r.builder.
		Update(entriesTable).
		Set("deletion_mark", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entryID}).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("entry", entryID.String())
	}

	return nil
}

// List retrieves entries with filtering and pagination, newest first.
func (r *EntryRepo) List(ctx context.Context, tenantID id.ID, filter ledger.EntryFilter) (ledger.MovementPage[*ledger.Entry], error) {
	var page ledger.MovementPage[*ledger.Entry]

	q := r.joinedSelect(tenantID).
		Where(squirrel.Eq{"e.deletion_mark": false})

	if !id.IsNil(filter.ProductID) {
		q = q.Where(squirrel.Eq{"e.product_id": filter.ProductID})
	}
	if !id.IsNil(filter.SupplierID) {
		q = q.Where(squirrel.Eq{"e.supplier_id": filter.SupplierID})
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
		return page, fmt.Errorf("count entries: %w", err)
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

	var rows []entryRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return page, fmt.Errorf("list entries: %w", err)
	}

	page.Items = make([]*ledger.Entry, 0, len(rows))
	for _, row := range rows {
		page.Items = append(page.Items, row.toEntry())
	}

	return page, nil
}

// ExistsByProduct reports whether any non-deleted entry references the product.
func (r *EntryRepo) ExistsByProduct(ctx context.Context, tenantID, productID id.ID) (bool, error) {
	return r.exists(ctx, tenantID, squirrel.Eq{"product_id": productID})
}

// ExistsBySupplier reports whether any non-deleted entry references the supplier.
func (r *EntryRepo) ExistsBySupplier(ctx context.Context, tenantID, supplierID id.ID) (bool, error) {
	return r.exists(ctx, tenantID, squirrel.Eq{"supplier_id": supplierID})
}

func (r *EntryRepo) exists(ctx context.Context, tenantID id.ID, cond squirrel.Eq) (bool, error) {
	q := r.builder.
		Select("1").
		From(entriesTable).
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
