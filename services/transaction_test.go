package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/wellchat-api/repositories"
)

type txKey struct{}

// MockTransactionManager is a mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// fakeTx records how it was finished and hands out a tagged context
type fakeTx struct {
	ctx         context.Context
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func newFakeTx() *fakeTx {
	return &fakeTx{ctx: context.WithValue(context.Background(), txKey{}, "tx")}
}

func (f *fakeTx) Commit() error            { f.committed = true; return f.commitErr }
func (f *fakeTx) Rollback() error          { f.rolledBack = true; return f.rollbackErr }
func (f *fakeTx) Context() context.Context { return f.ctx }

func TestWithTransaction(t *testing.T) {
	operationErr := errors.New("operation failed")

	tests := []struct {
		name           string
		tx             *fakeTx
		fnErr          error
		wantErr        string
		wantCommitted  bool
		wantRolledBack bool
	}{
		{
			name:          "commits on success",
			tx:            newFakeTx(),
			wantCommitted: true,
		},
		{
			name:           "rolls back on error",
			tx:             newFakeTx(),
			fnErr:          operationErr,
			wantErr:        "operation failed",
			wantRolledBack: true,
		},
		{
			name:          "reports commit failure",
			tx:            &fakeTx{ctx: context.Background(), commitErr: errors.New("commit failed")},
			wantErr:       "failed to commit transaction",
			wantCommitted: true,
		},
		{
			name:           "reports rollback failure",
			tx:             &fakeTx{ctx: context.Background(), rollbackErr: errors.New("rollback failed")},
			fnErr:          operationErr,
			wantErr:        "rollback error",
			wantRolledBack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			txMgr := new(MockTransactionManager)
			txMgr.On("Begin", ctx).Return(tt.tx, nil)

			err := WithTransaction(ctx, txMgr, func(ctx context.Context, tx repositories.Transaction) error {
				return tt.fnErr
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCommitted, tt.tx.committed)
			assert.Equal(t, tt.wantRolledBack, tt.tx.rolledBack)
			txMgr.AssertExpectations(t)
		})
	}
}

func TestWithTransaction_PassesTransactionContext(t *testing.T) {
	ctx := context.Background()
	tx := newFakeTx()
	txMgr := new(MockTransactionManager)
	txMgr.On("Begin", ctx).Return(tx, nil)

	var seen interface{}
	err := WithTransaction(ctx, txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		seen = ctx.Value(txKey{})
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "tx", seen)
}

func TestWithTransaction_BeginError(t *testing.T) {
	ctx := context.Background()
	txMgr := new(MockTransactionManager)
	txMgr.On("Begin", ctx).Return(nil, errors.New("connection refused"))

	called := false
	err := WithTransaction(ctx, txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	tx := newFakeTx()
	txMgr := new(MockTransactionManager)
	txMgr.On("Begin", ctx).Return(tx, nil)

	assert.Panics(t, func() {
		_ = WithTransaction(ctx, txMgr, func(ctx context.Context, _ repositories.Transaction) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWithTransactionResult(t *testing.T) {
	t.Run("returns value on success", func(t *testing.T) {
		ctx := context.Background()
		tx := newFakeTx()
		txMgr := new(MockTransactionManager)
		txMgr.On("Begin", ctx).Return(tx, nil)

		result, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context, _ repositories.Transaction) (int, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
		assert.True(t, tx.committed)
	})

	t.Run("zero value on begin error", func(t *testing.T) {
		ctx := context.Background()
		txMgr := new(MockTransactionManager)
		txMgr.On("Begin", ctx).Return(nil, errors.New("pool exhausted"))

		result, err := WithTransactionResult(ctx, txMgr, func(ctx context.Context, _ repositories.Transaction) (string, error) {
			return "unused", nil
		})

		require.Error(t, err)
		assert.Empty(t, result)
	})
}
