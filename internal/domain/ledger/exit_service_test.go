package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

func TestExitCreateConsumesStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(20, 7.5))
	require.NoError(t, err)

	exit, err := f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)
	assert.Equal(t, "SA-000001", exit.Number)

	agg := f.aggregate()
	assert.Equal(t, qty(12), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("7.5")), "exits must not move the average, got %s", agg.UnitCost)
}

func TestExitCreateTransferOutWithoutField(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	exit, err := f.exits.Create(ctx, f.newTransferOut(4))
	require.NoError(t, err)
	assert.Equal(t, ExitNegativeTransfer, exit.Type)
	assert.True(t, id.IsNil(exit.FieldID))

	agg := f.aggregate()
	assert.Equal(t, qty(6), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")))
}

func TestExitCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	applicationNoField := f.newExit(2)
	applicationNoField.FieldID = id.Nil()

	transferWithField := f.newTransferOut(2)
	transferWithField.FieldID = f.fieldID

	untyped := f.newExit(2)
	untyped.Type = ""

	cases := []struct {
		name string
		exit *Exit
	}{
		{"application without field", applicationNoField},
		{"transfer with field", transferWithField},
		{"missing type", untyped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.exits.Create(ctx, tc.exit)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "got %v", err)
		})
	}
}

func TestExitCreateInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(5, 10))
	require.NoError(t, err)

	_, err = f.exits.Create(ctx, f.newExit(8))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock), "got %v", err)

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 8.0, appErr.Details["requested"])
	assert.Equal(t, 5.0, appErr.Details["available"])

	// The rejected exit must not be persisted.
	page, err := f.exits.List(ctx, ExitFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, qty(5), f.aggregate().Quantity)
}

func TestExitCreateFromEmptyStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.exits.Create(ctx, f.newExit(1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 0.0, appErr.Details["available"])
}

func TestExitCreateUnknownField(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)

	exit := f.newExit(2)
	exit.FieldID = id.New()
	_, err = f.exits.Create(ctx, exit)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestExitUpdateUsesRestoredHeadroom(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	// Stock is 2, but updating the exit first returns its own 8, so the new
	// quantity may go up to 10.
	patch := f.newExit(10)
	patch.Version = exit.Version
	updated, err := f.exits.Update(ctx, exit.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, qty(10), updated.Quantity)
	assert.True(t, f.aggregate().Quantity.IsZero())
}

func TestExitUpdateBeyondHeadroom(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	patch := f.newExit(11)
	patch.Version = exit.Version
	_, err = f.exits.Update(ctx, exit.ID, patch)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 11.0, appErr.Details["requested"])
	assert.Equal(t, 10.0, appErr.Details["available"], "headroom includes the reversed original quantity")

	// Atomic: the interim reversal is rolled back with the failure.
	assert.Equal(t, qty(2), f.aggregate().Quantity)
	stored, err := f.exits.GetByID(ctx, exit.ID)
	require.NoError(t, err)
	assert.Equal(t, qty(8), stored.Quantity)
}

func TestExitUpdateVersionConflict(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(3))
	require.NoError(t, err)

	patch := f.newExit(4)
	patch.Version = exit.Version + 1
	_, err = f.exits.Update(ctx, exit.ID, patch)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConcurrentModification))
}

func TestExitDeleteReturnsStock(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	require.NoError(t, f.exits.Delete(ctx, exit.ID))

	agg := f.aggregate()
	assert.Equal(t, qty(10), agg.Quantity)
	assert.True(t, agg.UnitCost.Equal(types.MustCost("5")))

	_, err = f.exits.GetByID(ctx, exit.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestExitDeleteThenEntryDeleteSucceeds(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	entry, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(8))
	require.NoError(t, err)

	// Deleting the entry directly is blocked, but removing the consuming
	// exit first restores enough stock to reverse it.
	require.Error(t, f.entries.Delete(ctx, entry.ID))
	require.NoError(t, f.exits.Delete(ctx, exit.ID))
	require.NoError(t, f.entries.Delete(ctx, entry.ID))

	assert.True(t, f.aggregate().Quantity.IsZero())
	assert.True(t, f.aggregate().UnitCost.IsZero())
}

func TestExitTenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := f.ctx()

	_, err := f.entries.Create(ctx, f.newEntry(10, 5))
	require.NoError(t, err)
	exit, err := f.exits.Create(ctx, f.newExit(2))
	require.NoError(t, err)

	other := newFixture()
	_, err = f.exits.GetByID(other.ctx(), exit.ID)
	assert.True(t, apperror.IsNotFound(err))
}
