package database

import (
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman/metrics"
)

// stmtObserver logs and times every statement an executor runs.
type stmtObserver struct {
	driver  string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func newObserver(driver string, o options) stmtObserver {
	return stmtObserver{
		driver:  driver,
		logger:  o.logger.With(zap.String("driver", driver)),
		metrics: o.metrics,
	}
}

// begin starts observing one statement; call the returned func with its
// outcome.
func (o stmtObserver) begin(op, query string, argc int) func(error) {
	id := ulid.Make().String()
	start := time.Now()
	return func(err error) {
		took := time.Since(start)
		o.metrics.ObserveStatement(o.driver, op, took, err)

		fields := []zap.Field{
			zap.String("query_id", id),
			zap.String("op", op),
			zap.String("sql", query),
			zap.Int("args", argc),
			zap.Duration("took", took),
		}
		if err != nil {
			o.logger.Warn("statement failed", append(fields, zap.Error(err))...)
			return
		}
		if ce := o.logger.Check(zap.DebugLevel, "statement"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// observedRow reports the outcome of QueryRow once it is scanned.
type observedRow struct {
	row   Row
	done  func(error)
	empty func(error) bool
}

func (r *observedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if err != nil && r.empty(err) {
		r.done(nil)
	} else {
		r.done(err)
	}
	return err
}
