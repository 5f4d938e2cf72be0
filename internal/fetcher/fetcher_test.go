package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricechart/internal/model"
)

func TestRecords(t *testing.T) {
	header := []string{"\ufeffyear", " min_price ", "", "notes"}
	rows := [][]string{
		{"1990", " 1.99 ", "ignored", "first"},
		{"", " ", "", ""},
		{"1991"},
	}

	got := Records(header, rows)
	require.Len(t, got, 2)
	assert.Equal(t, model.RawRecord{"year": "1990", "min_price": "1.99", "notes": "first"}, got[0])
	assert.Equal(t, model.RawRecord{"year": "1991"}, got[1])
}

func TestRecords_Empty(t *testing.T) {
	assert.Empty(t, Records([]string{"year"}, nil))
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"data/prices.csv", FormatCSV},
		{"prices.JSON", FormatJSON},
		{"/tmp/prices.xlsx", FormatXLSX},
		{"https://example.com/api/prices.json?v=2", FormatJSON},
		{"prices", FormatCSV},
		{"prices.txt", FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.name))
		})
	}
}

func TestParse_DispatchesByFormat(t *testing.T) {
	ctx := context.Background()

	csvRecs, err := Parse(ctx, strings.NewReader("year,notes\n2001,a\n"), FormatCSV, "")
	require.NoError(t, err)
	assert.Equal(t, []model.RawRecord{{"year": "2001", "notes": "a"}}, csvRecs)

	jsonRecs, err := Parse(ctx, strings.NewReader(`[{"year":2001,"notes":"a"}]`), FormatJSON, "")
	require.NoError(t, err)
	assert.Equal(t, []model.RawRecord{{"year": "2001", "notes": "a"}}, jsonRecs)
}

func TestParse_XLSX(t *testing.T) {
	path := createTestXLSX(t, "Prices", [][]string{
		{"Year", "Minimum Price"},
		{"1995", "0.89"},
	})
	data := readFile(t, path)

	recs, err := Parse(context.Background(), strings.NewReader(string(data)), FormatXLSX, "Prices")
	require.NoError(t, err)
	assert.Equal(t, []model.RawRecord{{"Year": "1995", "Minimum Price": "0.89"}}, recs)
}
