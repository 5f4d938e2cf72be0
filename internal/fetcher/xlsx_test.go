package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricechart/internal/model"
)

func TestReadXLSX(t *testing.T) {
	path := createTestXLSX(t, "Sheet1", [][]string{
		{"Year", "Price_Low_USD", "Price_High_USD"},
		{"1990", "1.29", "1.49"},
		{"", "", ""},
		{"1991", "1.39"},
	})

	recs, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.RawRecord{"Year": "1990", "Price_Low_USD": "1.29", "Price_High_USD": "1.49"}, recs[0])
	assert.Equal(t, "1.39", recs[1]["Price_Low_USD"])
}

func TestReadXLSX_SheetByName(t *testing.T) {
	path := createTestXLSX(t, "History", [][]string{{"year"}, {"2005"}})

	recs, err := ReadXLSX(path, XLSXOptions{SheetName: "History"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_IndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, "Sheet1", [][]string{{"year"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_HeaderOnly(t *testing.T) {
	path := createTestXLSX(t, "Sheet1", [][]string{{"year", "notes"}})

	recs, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadXLSX_BadFile(t *testing.T) {
	_, err := ReadXLSX("/nonexistent/file.xlsx", XLSXOptions{})
	require.Error(t, err)

	_, err = ReadXLSXBytes([]byte("not a zip"), XLSXOptions{})
	require.Error(t, err)
}
