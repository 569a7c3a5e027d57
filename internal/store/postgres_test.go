// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/modreg/pkg/errutil"
)

var (
	existsQuery   = regexp.QuoteMeta(`SELECT to_regclass('public.modules') IS NOT NULL`)
	listQuery     = regexp.QuoteMeta(`SELECT module FROM modules ORDER BY module`)
	insertQuery   = regexp.QuoteMeta(`INSERT INTO modules (module) VALUES ($1)`)
	deleteQuery   = regexp.QuoteMeta(`DELETE FROM modules WHERE module = $1`)
	containsQuery = regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM modules WHERE module = $1)`)
)

func newMockKeySet(t *testing.T) (*PostgresKeySet, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return NewPostgresKeySet(mock), mock
}

func TestPostgresKeySet_EnsureInitialized(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "table exists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
		},
		{
			name: "table missing applies migrations",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS modules`).
					WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
				mock.ExpectExec(`CREATE INDEX IF NOT EXISTS modules_installed_at_idx`).
					WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
			},
		},
		{
			name: "create fails",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec(`CREATE TABLE IF NOT EXISTS modules`).
					WillReturnError(errors.New("permission denied"))
			},
			wantErr: true,
		},
		{
			name: "check fails",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(existsQuery).WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, mock := newMockKeySet(t)
			tt.setupMock(mock)

			err := keys.EnsureInitialized(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrPersistence)
				errutil.AssertErrorCode(t, err, CodePersistenceFailed)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPostgresKeySet_ListAll(t *testing.T) {
	t.Run("returns rows in order", func(t *testing.T) {
		keys, mock := newMockKeySet(t)
		mock.ExpectQuery(listQuery).
			WillReturnRows(pgxmock.NewRows([]string{"module"}).AddRow("alpha").AddRow("beta"))

		got, err := keys.ListAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, got)
	})

	t.Run("query error", func(t *testing.T) {
		keys, mock := newMockKeySet(t)
		mock.ExpectQuery(listQuery).WillReturnError(errors.New("connection refused"))

		_, err := keys.ListAll(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPostgresKeySet_Add(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "inserts"},
		{name: "unique violation is a no-op", execErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation}},
		{name: "other errors fail", execErr: &pgconn.PgError{Code: pgerrcode.UndefinedTable}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, mock := newMockKeySet(t)
			exp := mock.ExpectExec(insertQuery).WithArgs("alpha")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := keys.Add(context.Background(), "alpha")
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, CodePersistenceFailed)
				errutil.AssertErrorContext(t, err, "module", "alpha")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPostgresKeySet_Remove(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		keys, mock := newMockKeySet(t)
		mock.ExpectExec(deleteQuery).WithArgs("alpha").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		require.NoError(t, keys.Remove(context.Background(), "alpha"))
	})

	t.Run("error", func(t *testing.T) {
		keys, mock := newMockKeySet(t)
		mock.ExpectExec(deleteQuery).WithArgs("alpha").WillReturnError(errors.New("boom"))

		err := keys.Remove(context.Background(), "alpha")
		assert.ErrorIs(t, err, ErrPersistence)
	})
}

func TestPostgresKeySet_Contains(t *testing.T) {
	keys, mock := newMockKeySet(t)
	mock.ExpectQuery(containsQuery).WithArgs("alpha").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(containsQuery).WithArgs("beta").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	found, err := keys.Contains(context.Background(), "alpha")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = keys.Contains(context.Background(), "beta")
	require.NoError(t, err)
	assert.False(t, found)
}
