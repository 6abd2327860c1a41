package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/entity"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
	"agrostock/internal/domain/ledger"
)

func TestCreateEntryRequestToEntity(t *testing.T) {
	productID, supplierID := id.New(), id.New()

	req := CreateEntryRequest{
		Type:       "PURCHASE",
		ProductID:  productID.String(),
		SupplierID: supplierID.String(),
		Quantity:   12.5,
		UnitCost:   "3.80",
		Date:       "2026-03-10T08:30:00Z",
		Note:       "first load",
	}

	entry, err := req.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryPurchase, entry.Type)
	assert.Equal(t, productID, entry.ProductID)
	assert.Equal(t, supplierID, entry.SupplierID)
	assert.Equal(t, 12.5, entry.Quantity.Float64())
	assert.Equal(t, "3.8", entry.UnitCost.String())
	assert.Equal(t, time.Date(2026, time.March, 10, 8, 30, 0, 0, time.UTC), entry.Date.UTC())
	assert.Equal(t, "first load", entry.Note)
}

func TestCreateEntryRequestTransferOmitsSupplierAndCost(t *testing.T) {
	req := CreateEntryRequest{
		Type:      "POSITIVE_TRANSFER",
		ProductID: id.New().String(),
		Quantity:  5,
	}

	entry, err := req.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryPositiveTransfer, entry.Type)
	assert.True(t, id.IsNil(entry.SupplierID))
	assert.True(t, entry.UnitCost.IsZero())
	assert.True(t, entry.Date.IsZero(), "omitted date is filled by the service")
}

func TestCreateEntryRequestRejectsMalformedInput(t *testing.T) {
	valid := CreateEntryRequest{
		Type:       "PURCHASE",
		ProductID:  id.New().String(),
		SupplierID: id.New().String(),
		Quantity:   1,
		UnitCost:   "2",
	}

	bad := valid
	bad.ProductID = "not-a-uuid"
	_, err := bad.ToEntity()
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	bad = valid
	bad.UnitCost = "2,50"
	_, err = bad.ToEntity()
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	bad = valid
	bad.Date = "10/03/2026"
	_, err = bad.ToEntity()
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestUpdateEntryRequestCarriesVersion(t *testing.T) {
	req := UpdateEntryRequest{
		Type:       "PURCHASE",
		ProductID:  id.New().String(),
		SupplierID: id.New().String(),
		Quantity:   4,
		UnitCost:   "1.25",
		Version:    3,
	}

	patch, err := req.ToPatch()
	require.NoError(t, err)
	assert.Equal(t, 3, patch.Version)
}

func TestFromEntryComputesTotalCost(t *testing.T) {
	supplierID := id.New()
	entry := &ledger.Entry{
		BaseMovement: entity.NewBaseMovement(id.New(), id.New()),
		Number:       "EN-2026-000001",
		Type:         ledger.EntryPurchase,
		ProductID:    id.New(),
		SupplierID:   supplierID,
		Quantity:     types.NewQuantityFromFloat64(10),
		UnitCost:     types.NewCost(2.85),
		Product:      &ledger.ProductRef{ID: id.New(), Name: "Urea", Unit: "kg"},
	}

	resp := FromEntry(entry)
	assert.Equal(t, "EN-2026-000001", resp.Number)
	assert.Equal(t, "PURCHASE", resp.Type)
	assert.Equal(t, supplierID.String(), resp.SupplierID)
	assert.Equal(t, 10.0, resp.Quantity)
	assert.Equal(t, "28.5", resp.TotalCost)
	require.NotNil(t, resp.Product)
	assert.Equal(t, "Urea", resp.Product.Name)
	assert.Nil(t, resp.Supplier)
}

func TestFromEntryTransferHidesSupplier(t *testing.T) {
	entry := &ledger.Entry{
		BaseMovement: entity.NewBaseMovement(id.New(), id.New()),
		Number:       "EN-2026-000002",
		Type:         ledger.EntryPositiveTransfer,
		ProductID:    id.New(),
		SupplierID:   id.Nil(),
		Quantity:     types.NewQuantityFromFloat64(3),
		UnitCost:     types.ZeroCost(),
	}

	resp := FromEntry(entry)
	assert.Equal(t, "POSITIVE_TRANSFER", resp.Type)
	assert.Empty(t, resp.SupplierID)
}

func TestCreateExitRequestToEntity(t *testing.T) {
	productID, fieldID := id.New(), id.New()

	req := CreateExitRequest{
		Type:      "APPLICATION",
		ProductID: productID.String(),
		FieldID:   fieldID.String(),
		Quantity:  7.25,
	}

	exit, err := req.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, ledger.ExitApplication, exit.Type)
	assert.Equal(t, productID, exit.ProductID)
	assert.Equal(t, fieldID, exit.FieldID)
	assert.Equal(t, 7.25, exit.Quantity.Float64())

	req.FieldID = "nope"
	_, err = req.ToEntity()
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreateExitRequestTransferOmitsField(t *testing.T) {
	req := CreateExitRequest{
		Type:      "NEGATIVE_TRANSFER",
		ProductID: id.New().String(),
		Quantity:  2,
	}

	exit, err := req.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, ledger.ExitNegativeTransfer, exit.Type)
	assert.True(t, id.IsNil(exit.FieldID))
}
