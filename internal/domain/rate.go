package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DateColumn is the header of the first table column.
const DateColumn = "Date"

// DatedRate is a single rate published for a date. Rate is invalid when the bank has no
// value for that date.
type DatedRate struct {
	Date time.Time
	Rate decimal.NullDecimal
}

type Row struct {
	Date  time.Time
	Rates []decimal.NullDecimal // one per currency, in query order
}

// RateTable holds one row per calendar day in ascending order. An invalid NullDecimal
// marks a cell with no published rate.
type RateTable struct {
	Currencies []string
	Rows       []Row
}

func (t RateTable) Header() []string {
	return append([]string{DateColumn}, t.Currencies...)
}

func (t RateTable) Empty() bool {
	return len(t.Rows) == 0
}

// Rate returns the cell for code in the given row.
func (t RateTable) Rate(row int, code string) (decimal.NullDecimal, bool) {
	col := slices.Index(t.Currencies, code)
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row].Rates) {
		return decimal.NullDecimal{}, false
	}
	return t.Rows[row].Rates[col], true
}
