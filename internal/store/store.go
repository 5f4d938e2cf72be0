// Package store reads the price table from SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricechart/internal/model"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultTable is the table read when none is configured.
const DefaultTable = "prices"

// Store is a read-only price table.
type Store interface {
	// Records returns every row of the table as raw text cells keyed by
	// column name. NULL cells are omitted.
	Records(ctx context.Context) ([]model.RawRecord, error)
	Close() error
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Open connects to the price table for the given driver.
func Open(ctx context.Context, driver, dsn, table string) (Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identPattern.MatchString(table) {
		return nil, eris.Errorf("store: invalid table name %q", table)
	}
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(dsn, table)
	case DriverPostgres:
		return NewPostgres(ctx, dsn, table)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// cellText renders a driver value as the text a CSV cell would hold.
func cellText(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(val), true
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return "", false
		}
		return cellText(inner)
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}

func record(cols []string, vals []any) model.RawRecord {
	rec := make(model.RawRecord, len(cols))
	for i, col := range cols {
		if i >= len(vals) {
			break
		}
		if s, ok := cellText(vals[i]); ok {
			rec[col] = s
		}
	}
	return rec
}
