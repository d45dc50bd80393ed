package connector

import (
	"context"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/Konsultn-Engineering/layman/dialect"
)

const defaultMySQLPort = 3306

// MySQLDSN builds a go-sql-driver/mysql DSN.
func MySQLDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	port := cfg.Port
	if port == 0 {
		port = defaultMySQLPort
	}
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	switch cfg.SSLMode {
	case "", "disable":
	case "require":
		mc.TLSConfig = "skip-verify"
	case "verify-full", "verify-ca":
		mc.TLSConfig = "true"
	default:
		mc.TLSConfig = cfg.SSLMode
	}
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// MySQLProvider opens a database/sql pool on go-sql-driver/mysql. With TiDB
// set the connection reports the TiDB dialect.
type MySQLProvider struct {
	TiDB bool
}

func (p MySQLProvider) Dialect() dialect.Dialect {
	if p.TiDB {
		return dialect.NewTiDBDialect()
	}
	return dialect.NewMySQLDialect()
}

func (p MySQLProvider) Connect(ctx context.Context, cfg Config, s Settings) (Connection, error) {
	return openSQL(ctx, "mysql", MySQLDSN(cfg), p.Dialect(), cfg, s)
}
