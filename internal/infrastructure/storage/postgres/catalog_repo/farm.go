package catalog_repo

import (
	"agrostock/internal/domain/catalogs/farm"
	"agrostock/internal/infrastructure/storage/postgres"
)

const farmTable = "cat_farms"

// FarmRepo implements farm.Repository.
type FarmRepo struct {
	*BaseCatalogRepo[*farm.Farm]
}

// NewFarmRepo creates a new farm repository.
func NewFarmRepo(tx *postgres.TxManager) *FarmRepo {
	return &FarmRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			tx,
			farmTable,
			postgres.ExtractDBColumns[farm.Farm](),
			func() *farm.Farm { return &farm.Farm{} },
		),
	}
}
