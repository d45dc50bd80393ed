package dialect

// TiDB speaks the MySQL protocol and shares its quoting rules.
type TiDB struct {
	*MySQL
}

func NewTiDBDialect() Dialect {
	return &TiDB{
		MySQL: NewMySQLDialect().(*MySQL),
	}
}

func (t *TiDB) Name() string {
	return "tidb"
}
