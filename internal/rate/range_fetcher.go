package rate

import (
	"context"
	"errors"
	"fmt"
	"nburates/internal/adapters"
	"nburates/internal/domain"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RangeFetcher asks the range endpoint once per currency. The first currency that answers
// fixes the date sequence; a currency that disagrees with it aborts the run instead of
// producing shifted columns. An unreachable API aborts the run as well, while a bad status
// or body only empties that currency's column.
type RangeFetcher struct {
	client adapters.RateClient
	log    logrus.FieldLogger
}

func NewRangeFetcher(client adapters.RateClient, log logrus.FieldLogger) *RangeFetcher {
	return &RangeFetcher{client: client, log: log}
}

func (f *RangeFetcher) Fetch(ctx context.Context, q domain.RateQuery) (domain.RateTable, error) {
	codes := q.Currencies()
	log := f.log.WithFields(logrus.Fields{"exec_id": uuid.NewString(), "strategy": "range"})
	log.Infof("Getting %v rates for %s..%s", codes, q.Start().Format(domain.DateLayout), q.End().Format(domain.DateLayout))

	columns := make([]map[string]decimal.NullDecimal, len(codes))
	var canonical []time.Time
	canonicalCode := ""

	for i, code := range codes {
		records, err := f.client.GetRatesForRange(ctx, code, q.Start(), q.End())
		if err != nil {
			if errors.Is(err, domain.ErrRemoteUnavailable) || ctx.Err() != nil {
				return domain.RateTable{}, fmt.Errorf("fetch range for %s: %w", code, err)
			}
			log.WithError(err).WithField("currency", code).Warn("range lookup failed, leaving column empty")
			continue
		}

		dates := make([]time.Time, len(records))
		column := make(map[string]decimal.NullDecimal, len(records))
		for k, rec := range records {
			dates[k] = rec.Date
			column[rec.Date.Format(domain.DateLayout)] = rec.Rate
		}
		columns[i] = column

		if canonical == nil {
			canonical, canonicalCode = dates, code
			continue
		}
		if !slices.EqualFunc(canonical, dates, time.Time.Equal) {
			log.WithFields(logrus.Fields{
				"currency":  code,
				"reference": canonicalCode,
				"got":       len(dates),
				"expected":  len(canonical),
			}).Error("exchange dates differ between currencies")
			return domain.RateTable{}, fmt.Errorf("%w: exchange dates of %s differ from %s", domain.ErrDataIntegrity, code, canonicalCode)
		}
	}

	dates := q.Dates()
	rows := make([]domain.Row, len(dates))
	for i, d := range dates {
		key := d.Format(domain.DateLayout)
		rates := make([]decimal.NullDecimal, len(codes))
		for j := range codes {
			rates[j] = columns[j][key]
		}
		rows[i] = domain.Row{Date: d, Rates: rates}
	}

	log.Infof("%d rows collected", len(rows))
	return domain.RateTable{Currencies: codes, Rows: rows}, nil
}
