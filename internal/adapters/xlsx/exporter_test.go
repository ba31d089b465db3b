package xlsx

import (
	"bytes"
	"nburates/internal/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func rate(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleTable() domain.RateTable {
	day := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.RateTable{
		Currencies: []string{"EUR", "USD"},
		Rows: []domain.Row{
			{Date: day, Rates: []decimal.NullDecimal{rate("30.9226"), rate("27.2782")}},
			{Date: day.AddDate(0, 0, 1), Rates: []decimal.NullDecimal{{}, rate("27.2782")}},
			{Date: day.AddDate(0, 0, 2), Rates: []decimal.NullDecimal{rate("30.9"), {}}},
		},
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates_EUR_USD_2022-01-01_2022-01-03.xlsx")

	require.NoError(t, NewExporter().Save(sampleTable(), path))

	sheet, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, SheetName, sheet.Title)
	require.Equal(t, float64(DateColumnWidth), sheet.DateColumnWidth)
	require.True(t, sheet.HeaderBold)
	require.Equal(t, [][]string{
		{"Date", "EUR", "USD"},
		{"2022-01-01", "30.9226", "27.2782"},
		{"2022-01-02", "", "27.2782"},
		{"2022-01-03", "30.9"},
	}, sheet.Rows)
}

func TestSave_RatesAreNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.xlsx")
	require.NoError(t, NewExporter().Save(sampleTable(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	typ, err := f.GetCellType(SheetName, "B2")
	require.NoError(t, err)
	require.NotEqual(t, excelize.CellTypeSharedString, typ)
	require.NotEqual(t, excelize.CellTypeInlineString, typ)

	empty, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSave_EmptyTableCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	err := NewExporter().Save(domain.RateTable{Currencies: []string{"EUR"}}, path)
	require.ErrorIs(t, err, domain.ErrEmptyResult)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestSave_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "rates.xlsx")

	err := NewExporter().Save(sampleTable(), path)
	require.ErrorIs(t, err, domain.ErrExportFailure)
}

func TestWrite_ProducesWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Write(sampleTable(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())
	v, err := f.GetCellValue(SheetName, "C1")
	require.NoError(t, err)
	require.Equal(t, "USD", v)
}

func TestWrite_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	err := NewExporter().Write(domain.RateTable{}, &buf)
	require.ErrorIs(t, err, domain.ErrEmptyResult)
	require.Zero(t, buf.Len())
}
