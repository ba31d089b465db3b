package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	CompactLayout = "20060102"
)

// RateQuery is an immutable request for rates of Currencies over [Start, End].
type RateQuery struct {
	currencies []string
	start      time.Time
	end        time.Time
	swapped    bool
}

// NewRateQuery parses both dates strictly as YYYY-MM-DD. Reversed dates are swapped and
// reported by Swapped, never rejected.
func NewRateQuery(currencies []string, start, end string) (RateQuery, error) {
	if len(currencies) == 0 {
		return RateQuery{}, fmt.Errorf("%w: at least one currency code is required", ErrInvalidInput)
	}
	startDate, err := ParseDate(start)
	if err != nil {
		return RateQuery{}, fmt.Errorf("start date: %w", err)
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return RateQuery{}, fmt.Errorf("end date: %w", err)
	}

	q := RateQuery{currencies: slices.Clone(currencies), start: startDate, end: endDate}
	if q.start.After(q.end) {
		q.start, q.end = q.end, q.start
		q.swapped = true
	}
	return q, nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must have YYYY-MM-DD format: %w", ErrInvalidInput, s, err)
	}
	return d, nil
}

func (q RateQuery) Currencies() []string { return slices.Clone(q.currencies) }
func (q RateQuery) Start() time.Time     { return q.start }
func (q RateQuery) End() time.Time       { return q.end }
func (q RateQuery) Swapped() bool        { return q.swapped }

// Days is the number of calendar days in the range, both ends included.
func (q RateQuery) Days() int {
	return int(q.end.Sub(q.start).Hours()/24) + 1
}

func (q RateQuery) Dates() []time.Time {
	dates := make([]time.Time, 0, q.Days())
	for d := q.start; !d.After(q.end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// BaseName is the file name stem: rates_<CUR1>_..._<start>_<end>.
func (q RateQuery) BaseName() string {
	return fmt.Sprintf("rates_%s_%s_%s",
		strings.Join(q.currencies, "_"), q.start.Format(DateLayout), q.end.Format(DateLayout))
}

func (q RateQuery) FileName() string {
	return q.BaseName() + ".xlsx"
}
