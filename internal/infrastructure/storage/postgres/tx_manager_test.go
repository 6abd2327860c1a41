package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrostock/internal/core/apperror"
)

// stubTx records rollbacks; the embedded interface covers the methods the
// manager never touches here.
type stubTx struct {
	pgx.Tx
	rolledBack bool
}

func (s *stubTx) Rollback(_ context.Context) error {
	s.rolledBack = true
	return nil
}

func TestTransactionErrorsGetFailureCode(t *testing.T) {
	m := &TxManager{}
	dbTx := &stubTx{}

	err := m.executeWithRollbackProtection(context.Background(), dbTx, func(context.Context) error {
		return errors.New("update stock_aggregates: connection reset")
	})
	require.Error(t, err)
	assert.True(t, dbTx.rolledBack)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransaction), "got %v", err)
}

func TestTransactionKeepsDomainErrorCodes(t *testing.T) {
	m := &TxManager{}
	dbTx := &stubTx{}

	cause := apperror.NewInsufficientStock("prod-1", 8, 5)
	err := m.executeWithRollbackProtection(context.Background(), dbTx, func(context.Context) error {
		return cause
	})
	require.Error(t, err)
	assert.True(t, dbTx.rolledBack)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock), "got %v", err)
	assert.False(t, apperror.IsCode(err, apperror.CodeTransaction))
}

func TestTransactionSuccessSkipsRollback(t *testing.T) {
	m := &TxManager{}
	dbTx := &stubTx{}

	err := m.executeWithRollbackProtection(context.Background(), dbTx, func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.False(t, dbTx.rolledBack)
}
