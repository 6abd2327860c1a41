package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"agrostock/internal/core/apperror"
	"agrostock/internal/domain/catalogs/supplier"
	"agrostock/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(tx *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			tx,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// FindByDocument retrieves a supplier by normalized CPF or CNPJ.
func (r *SupplierRepo) FindByDocument(ctx context.Context, document string) (*supplier.Supplier, error) {
	q, err := r.TenantScoped(ctx)
	if err != nil {
		return nil, err
	}

	q = q.
		Where(squirrel.Or{
			squirrel.Eq{"cpf": document},
			squirrel.Eq{"cnpj": document},
		}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sp, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", document)
		}
		return nil, err
	}
	return sp, nil
}
