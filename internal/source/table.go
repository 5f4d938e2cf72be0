package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/store"
)

// Opener connects to a price table.
type Opener func(ctx context.Context) (store.Store, error)

// Table reads the price table from a database. A connection is opened per
// read and closed afterwards.
type Table struct {
	Open Opener
}

// NewTable returns a Table for the given driver, DSN, and table name.
func NewTable(driver, dsn, table string) *Table {
	return &Table{Open: func(ctx context.Context) (store.Store, error) {
		return store.Open(ctx, driver, dsn, table)
	}}
}

// Read selects every row of the table.
func (t *Table) Read(ctx context.Context) ([]model.RawRecord, error) {
	s, err := t.Open(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "source: open table: %v", err)
	}
	defer s.Close() //nolint:errcheck

	recs, err := s.Records(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrUnavailable, "source: read table: %v", err)
	}
	return recs, nil
}
