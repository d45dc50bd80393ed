package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type countingPreparer struct {
	db    *sql.DB
	calls int
	err   error
}

func (p *countingPreparer) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.db.PrepareContext(ctx, query)
}

func newTestCache(t *testing.T, size int) (*StatementCache, *countingPreparer, map[*sql.Stmt]int) {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c, err := NewStatementCache(size)
	require.NoError(t, err)
	closed := map[*sql.Stmt]int{}
	c.closeStmt = func(stmt *sql.Stmt) error {
		closed[stmt]++
		return stmt.Close()
	}
	return c, &countingPreparer{db: db}, closed
}

func TestStatementCache(t *testing.T) {
	ctx := context.Background()
	c, p, closed := newTestCache(t, 2)

	first, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)
	assert.True(t, first.Fresh())
	require.NoError(t, first.Release())

	again, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)
	assert.False(t, again.Fresh())
	assert.Same(t, first.Stmt(), again.Stmt())
	assert.Equal(t, 1, p.calls)
	require.NoError(t, again.Release())

	assert.True(t, c.Contains("SELECT 1"))
	assert.False(t, c.Contains("SELECT 2"))

	for _, q := range []string{"SELECT 2", "SELECT 3"} {
		l, err := c.Acquire(ctx, p, q)
		require.NoError(t, err)
		require.NoError(t, l.Release())
	}
	assert.Equal(t, 2, c.Len())

	// SELECT 1 was least recently used.
	assert.False(t, c.Contains("SELECT 1"))
	assert.Equal(t, 1, closed[first.Stmt()])

	p.err = errors.New("prepare failed")
	_, err = c.Acquire(ctx, p, "SELECT 4")
	assert.ErrorIs(t, err, p.err)
	assert.Equal(t, 2, c.Len())
	p.err = nil

	require.NoError(t, c.Close())
	assert.Zero(t, c.Len())
	assert.Len(t, closed, 3)
}

func TestStatementCacheEvictionWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	c, p, closed := newTestCache(t, 1)

	held, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)

	other, err := c.Acquire(ctx, p, "SELECT 2")
	require.NoError(t, err)
	require.NoError(t, other.Release())
	assert.False(t, c.Contains("SELECT 1"))

	// Evicted but still leased: usable and not closed.
	assert.Zero(t, closed[held.Stmt()])
	var n int
	require.NoError(t, held.Stmt().QueryRowContext(ctx).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, held.Release())
	assert.Equal(t, 1, closed[held.Stmt()])
	require.NoError(t, held.Release())
	assert.Equal(t, 1, closed[held.Stmt()], "release is idempotent")
}

func TestStatementCacheDiscard(t *testing.T) {
	ctx := context.Background()
	c, p, closed := newTestCache(t, 4)

	a, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)
	b, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)

	require.NoError(t, a.Discard())
	assert.False(t, c.Contains("SELECT 1"))
	assert.Zero(t, closed[b.Stmt()])

	require.NoError(t, b.Release())
	assert.Equal(t, 1, closed[b.Stmt()])

	fresh, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)
	assert.True(t, fresh.Fresh())
	assert.Equal(t, 2, p.calls)
	require.NoError(t, fresh.Release())
}

func TestStatementCacheCloseDefersLeased(t *testing.T) {
	ctx := context.Background()
	c, p, closed := newTestCache(t, 2)

	l, err := c.Acquire(ctx, p, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Zero(t, closed[l.Stmt()])

	require.NoError(t, l.Release())
	assert.Equal(t, 1, closed[l.Stmt()])
}

func TestNewStatementCacheInvalidSize(t *testing.T) {
	_, err := NewStatementCache(0)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("SELECT 1"), Key("SELECT 1"))
	assert.NotEqual(t, Key("SELECT 1"), Key("SELECT 2"))
}
