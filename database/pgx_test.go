package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func TestPgxExec(t *testing.T) {
	mock := newMockPool(t)
	core, logs := observer.New(zap.DebugLevel)
	db := NewPgxDatabase(mock, WithLogger(zap.New(core)))

	mock.ExpectExec(`UPDATE "users" SET "name" = $1 WHERE "id" = $2`).
		WithArgs("ada", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	res, err := db.ExecContext(context.Background(), `UPDATE "users" SET "name" = $1 WHERE "id" = $2`, "ada", int64(7))
	require.NoError(t, err)

	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = res.LastInsertId()
	assert.ErrorIs(t, err, ErrLastInsertID)

	entries := logs.FilterMessage("statement").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "exec", fields["op"])
	assert.Equal(t, "pgx", fields["driver"])
	assert.Len(t, fields["query_id"], 26)
}

func TestPgxQuery(t *testing.T) {
	mock := newMockPool(t)
	db := NewPgxDatabase(mock)

	mock.ExpectQuery(`SELECT "id", "name" FROM "users" WHERE "id" IN ($1, $2)`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "ada").
			AddRow(int64(2), "grace"))

	rows, err := db.QueryContext(context.Background(),
		`SELECT "id", "name" FROM "users" WHERE "id" IN ($1, $2)`, int64(1), int64(2))
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)

	var names []string
	for rows.Next() {
		var id int64
		var name string
		require.NoError(t, rows.Scan(&id, &name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"ada", "grace"}, names)
}

func TestPgxQueryRowNoRows(t *testing.T) {
	mock := newMockPool(t)
	core, logs := observer.New(zap.DebugLevel)
	db := NewPgxDatabase(mock, WithLogger(zap.New(core)))

	mock.ExpectQuery(`SELECT "name" FROM "users" WHERE "id" = $1`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	var name string
	err := db.QueryRowContext(context.Background(), `SELECT "name" FROM "users" WHERE "id" = $1`, int64(9)).Scan(&name)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Zero(t, logs.FilterMessage("statement failed").Len(), "no rows is not a failure")
}

func TestPgxPreparedStatement(t *testing.T) {
	mock := newMockPool(t)
	db := NewPgxDatabase(mock)

	mock.ExpectExec(`DELETE FROM "sessions" WHERE "id" = $1`).
		WithArgs("a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM "sessions" WHERE "id" = $1`).
		WithArgs("b").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	stmt, err := db.PrepareContext(context.Background(), `DELETE FROM "sessions" WHERE "id" = $1`)
	require.NoError(t, err)
	defer stmt.Close()

	for _, id := range []string{"a", "b"} {
		_, err := stmt.ExecContext(context.Background(), id)
		require.NoError(t, err)
	}
}

func TestPgxExecError(t *testing.T) {
	mock := newMockPool(t)
	core, logs := observer.New(zap.DebugLevel)
	db := NewPgxDatabase(mock, WithLogger(zap.New(core)))

	mock.ExpectExec(`INSERT INTO "users" ("id") VALUES ($1)`).
		WithArgs(int64(1)).
		WillReturnError(assert.AnError)

	_, err := db.ExecContext(context.Background(), `INSERT INTO "users" ("id") VALUES ($1)`, int64(1))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, logs.FilterMessage("statement failed").Len())
}

func TestPgxPingAndClose(t *testing.T) {
	mock := newMockPool(t)
	db := NewPgxDatabase(mock)

	mock.ExpectPing()
	require.NoError(t, db.PingContext(context.Background()))

	mock.ExpectClose()
	require.NoError(t, db.Close())
}
