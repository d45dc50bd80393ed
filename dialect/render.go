package dialect

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var ansiString = strings.NewReplacer("'", "''")

// mysqlString also escapes backslashes, which MySQL treats as an escape
// character unless NO_BACKSLASH_ESCAPES is set.
var mysqlString = strings.NewReplacer(`\`, `\\`, "'", `\'`, "\x00", `\0`, "\n", `\n`, "\r", `\r`, "\x1a", `\Z`)

func renderValue(v any, quote *strings.Replacer, timeLayout string, hexBytes func([]byte) string) string {
	if valuer, ok := v.(driver.Valuer); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "NULL"
		}
		inner, err := valuer.Value()
		if err != nil {
			return "NULL"
		}
		v = inner
	}
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + quote.Replace(val) + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'g', -1, 64)
	case time.Time:
		return "'" + val.Format(timeLayout) + "'"
	case []byte:
		return hexBytes(val)
	default:
		return "'" + quote.Replace(fmt.Sprint(val)) + "'"
	}
}
