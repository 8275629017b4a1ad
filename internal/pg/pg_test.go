package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestTXManager_Begin(t *testing.T) {
	errBusiness := errors.New("insufficient balance")
	readCommitted := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	tests := []struct {
		name        string
		prepareMock func(mock pgxmock.PgxPoolIface)
		fn          TransactionalFn
		expectedErr error
	}{
		{
			name: "Commit on success",
			prepareMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(readCommitted)
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context) error {
				_, ok := txFromContext(ctx)
				assert.True(t, ok)
				return nil
			},
		},
		{
			name: "Rollback on error",
			prepareMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(readCommitted)
				mock.ExpectRollback()
			},
			fn:          func(context.Context) error { return errBusiness },
			expectedErr: errBusiness,
		},
		{
			name: "Begin fails",
			prepareMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(readCommitted).WillReturnError(errors.New("connection refused"))
			},
			fn:          func(context.Context) error { return errors.New("ran without a transaction") },
			expectedErr: errors.New("begin transaction: connection refused"),
		},
		{
			name: "Commit fails",
			prepareMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBeginTx(readCommitted)
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			fn:          func(context.Context) error { return nil },
			expectedErr: errors.New("commit transaction: serialization failure"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newPool(t)
			tt.prepareMock(mock)

			err := NewTXManager(mock).Begin(context.Background(), tt.fn)

			if tt.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTXManager_NestedJoinsOuter(t *testing.T) {
	mock := newPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectCommit()

	m := NewTXManager(mock)
	calls := 0
	err := m.Begin(context.Background(), func(ctx context.Context) error {
		return m.Begin(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTXManager_PanicRollsBack(t *testing.T) {
	mock := newPool(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = NewTXManager(mock).Begin(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	constraint, ok := IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", constraint)

	_, ok = IsUniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = IsUniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}
