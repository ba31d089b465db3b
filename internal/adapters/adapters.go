package adapters

import (
	"context"
	"io"
	"nburates/internal/domain"
	"time"

	"github.com/shopspring/decimal"
)

// RateClient talks to the NBU API. GetRateOnDate returns an invalid NullDecimal with a nil
// error when the bank published no rate for the date.
type RateClient interface {
	GetRateOnDate(ctx context.Context, code string, date time.Time) (decimal.NullDecimal, error)
	GetRatesForRange(ctx context.Context, code string, start, end time.Time) ([]domain.DatedRate, error)
}

type RateFetcher interface {
	Fetch(ctx context.Context, q domain.RateQuery) (domain.RateTable, error)
}

type TableExporter interface {
	Save(table domain.RateTable, path string) error
	Write(table domain.RateTable, w io.Writer) error
}

// RequestObserver receives one call per finished NBU request.
type RequestObserver interface {
	ObserveRequest(endpoint, outcome string, elapsed time.Duration)
}
