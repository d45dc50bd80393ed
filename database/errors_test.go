package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		duplicate bool
		integrity bool
	}{
		{"nil", nil, false, false},
		{"plain", errors.New("boom"), false, false},
		{"pgx unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, true, true},
		{"pgx wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), true, true},
		{"pgx foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, false, true},
		{"pgx deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, false, false},
		{"pq unique", &pq.Error{Code: "23505"}, true, true},
		{"pq not null", &pq.Error{Code: "23502"}, false, true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, true, true},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452}, false, true},
		{"mysql lock timeout", &mysql.MySQLError{Number: 1205}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.duplicate, IsDuplicate(tt.err))
			assert.Equal(t, tt.integrity, IsIntegrityViolation(tt.err))
		})
	}
}

func TestRetry(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		calls := 0
		err := Retry(context.Background(), zap.New(core), policy, func(context.Context) error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, logs.FilterMessage("database retry").Len())
	})

	t.Run("gives up after the policy", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), nil, policy, func(context.Context) error {
			calls++
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 4, calls)
	})

	t.Run("integrity violations are final", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), nil, policy, func(context.Context) error {
			calls++
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		})
		assert.True(t, IsDuplicate(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("cancellation is final", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := Retry(ctx, nil, policy, func(ctx context.Context) error {
			calls++
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, calls, 1)
	})
}
