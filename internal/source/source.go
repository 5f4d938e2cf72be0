// Package source locates and reads the raw price table.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/pricechart/internal/model"
)

// ErrUnavailable marks every failure to obtain the dataset. Callers test for
// it with errors.Is.
var ErrUnavailable = eris.New("price data unavailable")

// Source yields the raw records of the price table. Each call reads afresh.
type Source interface {
	Read(ctx context.Context) ([]model.RawRecord, error)
}

// Memory is a fixed set of records.
type Memory []model.RawRecord

// Read returns a copy of the records.
func (m Memory) Read(_ context.Context) ([]model.RawRecord, error) {
	out := make([]model.RawRecord, len(m))
	copy(out, m)
	return out, nil
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]model.RawRecord, error)

// Read calls f.
func (f Func) Read(ctx context.Context) ([]model.RawRecord, error) {
	return f(ctx)
}
