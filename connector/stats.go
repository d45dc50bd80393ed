package connector

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

func statsFromDB(s sql.DBStats) ConnectionStats {
	return ConnectionStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
	}
}

func statsFromPool(s *pgxpool.Stat) ConnectionStats {
	return ConnectionStats{
		OpenConnections: int(s.TotalConns()),
		InUse:           int(s.AcquiredConns()),
		Idle:            int(s.IdleConns()),
	}
}
