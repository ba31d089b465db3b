package rate

import (
	"context"
	"nburates/internal/adapters"
	"nburates/internal/domain"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxWorkers = 16

// cell addresses one (date, currency) lookup in the result grid.
type cell struct {
	row  int
	col  int
	date time.Time
	code string
}

// DailyFetcher asks the single-date endpoint once per (date, currency). Any failure of a
// single lookup leaves an empty cell and the run goes on.
type DailyFetcher struct {
	client  adapters.RateClient
	log     logrus.FieldLogger
	workers int
}

func NewDailyFetcher(client adapters.RateClient, log logrus.FieldLogger, workers int) *DailyFetcher {
	return &DailyFetcher{client: client, log: log, workers: min(max(workers, 1), maxWorkers)}
}

func (f *DailyFetcher) Fetch(ctx context.Context, q domain.RateQuery) (domain.RateTable, error) {
	execID := uuid.NewString()
	dates := q.Dates()
	codes := q.Currencies()
	log := f.log.WithFields(logrus.Fields{"exec_id": execID, "strategy": "daily"})
	log.Infof("Getting %v rates for %s..%s", codes, q.Start().Format(domain.DateLayout), q.End().Format(domain.DateLayout))

	// STEP 1: preallocate the grid, every worker writes only its own cells
	rows := make([]domain.Row, len(dates))
	for i, d := range dates {
		rows[i] = domain.Row{Date: d, Rates: make([]decimal.NullDecimal, len(codes))}
	}

	// STEP 2: queue lookups in table order, so a single worker runs them date by date
	workQueue := make(chan cell, len(dates)*len(codes))
	for i, d := range dates {
		for j, code := range codes {
			workQueue <- cell{row: i, col: j, date: d, code: code}
		}
	}
	close(workQueue)

	// STEP 3: run workers; results land by index so row order never depends on timing
	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			f.runWorker(ctx, log.WithField("worker", workerID), workQueue, rows)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.RateTable{}, err
	}

	log.Infof("%d rows collected", len(rows))
	return domain.RateTable{Currencies: codes, Rows: rows}, nil
}

func (f *DailyFetcher) runWorker(ctx context.Context, log logrus.FieldLogger, workQueue <-chan cell, rows []domain.Row) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-workQueue:
			if !ok {
				return
			}
			rows[c.row].Rates[c.col] = f.lookup(ctx, log, c)
		}
	}
}

// lookup degrades every error to the empty sentinel.
func (f *DailyFetcher) lookup(ctx context.Context, log logrus.FieldLogger, c cell) decimal.NullDecimal {
	rate, err := f.client.GetRateOnDate(ctx, c.code, c.date)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"currency": c.code,
			"date":     c.date.Format(domain.DateLayout),
		}).Warn("rate lookup failed, leaving cell empty")
		return decimal.NullDecimal{}
	}
	return rate
}
