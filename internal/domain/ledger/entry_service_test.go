package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

func TestEntryCreate(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	created, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	assert.Equal(t, "EN-000001", created.Number)
	assert.Equal(t, f.userID, created.UserID)
	assert.Equal(t, 1, created.Version)

	agg := f.aggregate()
	assert.Equal(t, qty(10), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")))

	// Second receipt at a different price blends the average.
	_, err = f.entries.Create(ctx, f.newEntry(10, 10))
	require.NoError(t, err)

	agg = f.aggregate()
	assert.Equal(t, qty(20), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("7.5")), "got %s", agg.UnitCost)
}

func TestEntryCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	transferWithSupplier := f.newTransferIn(5)
	transferWithSupplier.SupplierID = f.supplier
	transferWithCost := f.newTransferIn(5)
	transferWithCost.UnitCost = types.NewCost(3)

	tests := []struct {
		name  string
		entry *Entry
	}{
		{"zero quantity", &Entry{Type: EntryPurchase, ProductID: f.productID, SupplierID: f.supplier, Quantity: 0, UnitCost: types.NewCost(5)}},
		{"negative quantity", f.newEntry(-1, 5)},
		{"purchase with zero cost", f.newEntry(10, 0)},
		{"missing product", &Entry{Type: EntryPurchase, SupplierID: f.supplier, Quantity: qty(1), UnitCost: types.NewCost(5)}},
		{"purchase without supplier", &Entry{Type: EntryPurchase, ProductID: f.productID, Quantity: qty(1), UnitCost: types.NewCost(5)}},
		{"missing type", &Entry{ProductID: f.productID, SupplierID: f.supplier, Quantity: qty(1), UnitCost: types.NewCost(5)}},
		{"transfer with supplier", transferWithSupplier},
		{"transfer with cost", transferWithCost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.entries.Create(ctx, tt.entry)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestEntryCreateTransferInKeepsAverage(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	// An inbound transfer carries no cost: quantity rises, average stays.
	created, err := f.entries.Create(ctx, f.newTransferIn(6))
	require.NoError(t, err)
	assert.Equal(t, EntryPositiveTransfer, created.Type)
	assert.True(t, created.UnitCost.IsZero())
	assert.True(t, id.IsNil(created.SupplierID))

	agg := f.aggregate()
	assert.Equal(t, qty(16), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")), "transfers must not move the average, got %s", agg.UnitCost)
}

func TestEntryTransferReversalKeepsAverage(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	transfer, err := f.entries.Create(ctx, f.newTransferIn(6))
	require.NoError(t, err)

	require.NoError(t, f.entries.Delete(ctx, transfer.ID))

	agg := f.aggregate()
	assert.Equal(t, qty(10), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")), "got %s", agg.UnitCost)
}

func TestEntryCreateUnknownReferences(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry := f.newEntry(10, 5)
	entry.ProductID = id.New()
	_, err := f.entries.Create(ctx, entry)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	entry = f.newEntry(10, 5)
	entry.SupplierID = id.New()
	_, err = f.entries.Create(ctx, entry)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEntryCreateRequiresAuthentication(t *testing.T) {
	f := newFixture()
	_, err := f.entries.Create(t.Context(), f.newEntry(10, 5))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeUnauthorized))
}

func TestEntryUpdateReversesAndReapplies(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	first, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	_, err = f.entries.Create(ctx, f.newEntry(10, 10))
	require.NoError(t, err)

	// Change the first receipt from 10@5 to 20@4: reverse restores 10@10,
	// reapply blends to 30 units at (10*10 + 20*4)/30 = 6.
	patch := f.newEntry(20, 4)
	patch.Version = first.Version
	updated, err := f.entries.Update(ctx, first.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, first.Number, updated.Number, "number is immutable across updates")
	assert.Equal(t, 2, updated.Version)

	agg := f.aggregate()
	assert.Equal(t, qty(30), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("6")), "got %s", agg.UnitCost)
}

func TestEntryCreateDefaultsDate(t *testing.T) {
	f := newFixture()

	created, err := f.entries.Create(f.ctx(), f.newEntry(10, 5))
	require.NoError(t, err)
	assert.False(t, created.Date.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), created.Date, time.Minute)
}

func TestEntryListFiltersByDate(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)

	early := f.newEntry(10, 5)
	early.Date = march
	_, err := f.entries.Create(ctx, early)
	require.NoError(t, err)

	late := f.newEntry(10, 5)
	late.Date = june
	created, err := f.entries.Create(ctx, late)
	require.NoError(t, err)

	page, err := f.entries.List(ctx, EntryFilter{From: time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	page, err = f.entries.List(ctx, EntryFilter{To: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, march, page.Items[0].Date)
}

func TestEntryUpdateIdenticalValuesLeavesAggregateUnchanged(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	second, err := f.entries.Create(ctx, f.newEntry(10, 10))
	require.NoError(t, err)

	before := f.aggregate()

	// Reverse plus reapply of the same values must be a no-op on the ledger.
	patch := f.newEntry(10, 10)
	patch.Version = second.Version
	_, err = f.entries.Update(ctx, second.ID, patch)
	require.NoError(t, err)

	after := f.aggregate()
	assert.Equal(t, before.Quantity, after.Quantity)
	assert.True(t, after.UnitCost.Equal(before.UnitCost),
		"before %s, after %s", before.UnitCost, after.UnitCost)
}

func TestEntryUpdateCannotReverseConsumedStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	_, err = f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	// Only 2 units remain but reversing the entry needs all 10.
	patch := f.newEntry(4, 5)
	patch.Version = entry.Version
	_, err = f.entries.Update(ctx, entry.ID, patch)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeCannotReverse), "got %v", err)

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 10.0, appErr.Details["required"])
	assert.Equal(t, 2.0, appErr.Details["available"])

	// Nothing moved: the aggregate still reflects entry minus exit.
	agg := f.aggregate()
	assert.Equal(t, qty(2), agg.Quantity)
	stored, err := f.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(10), stored.Quantity)
	assert.Equal(t, 1, stored.Version)
}

func TestEntryUpdateVersionConflict(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	patch := f.newEntry(12, 5)
	patch.Version = entry.Version + 5
	_, err = f.entries.Update(ctx, entry.ID, patch)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConcurrentModification))
}

func TestEntryDeleteRestoresPreviousAverage(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	second, err := f.entries.Create(ctx, f.newEntry(10, 10))
	require.NoError(t, err)

	require.NoError(t, f.entries.Delete(ctx, second.ID))

	agg := f.aggregate()
	assert.Equal(t, qty(10), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")), "got %s", agg.UnitCost)

	_, err = f.entries.GetByID(ctx, second.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestEntryDeleteRejectedWhenConsumed(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	_, err = f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	err = f.entries.Delete(ctx, entry.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeCannotReverse))

	// The entry survives the failed delete.
	stored, err := f.entries.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(10), stored.Quantity)
	assert.Equal(t, qty(2), f.aggregate().Quantity)
}

func TestEntryTenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	other := newFixture()
	otherCtx := other.ctx()
	_, err = f.entries.GetByID(otherCtx, entry.ID)
	assert.True(t, apperror.IsNotFound(err), "foreign tenant must see not found")

	page, err := f.entries.List(otherCtx, EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestEntryListFilters(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	otherProduct := id.New()
	f.resolver.products[otherProduct] = true

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	e2 := f.newEntry(3, 7)
	e2.ProductID = otherProduct
	_, err = f.entries.Create(ctx, e2)
	require.NoError(t, err)

	page, err := f.entries.List(ctx, EntryFilter{ProductID: otherProduct})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, otherProduct, page.Items[0].ProductID)

	all, err := f.entries.List(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}
