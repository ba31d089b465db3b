package rate

import (
	"context"
	"errors"
	"io"
	"nburates/internal/adapters"
	"nburates/internal/domain"

	"github.com/sirupsen/logrus"
)

type Service struct {
	fetcher  adapters.RateFetcher
	exporter adapters.TableExporter
	log      logrus.FieldLogger
}

func NewService(fetcher adapters.RateFetcher, exporter adapters.TableExporter, log logrus.FieldLogger) *Service {
	return &Service{fetcher: fetcher, exporter: exporter, log: log}
}

func (s *Service) Fetch(ctx context.Context, q domain.RateQuery) (domain.RateTable, error) {
	if q.Swapped() {
		s.log.WithFields(logrus.Fields{
			"start": q.Start().Format(domain.DateLayout),
			"end":   q.End().Format(domain.DateLayout),
		}).Info("Dates swapped, start date was after end date")
	}
	return s.fetcher.Fetch(ctx, q)
}

// Export saves the table to path. An empty table is returned as ErrEmptyResult; a failed
// write is logged and reported only through ok.
func (s *Service) Export(table domain.RateTable, path string) (ok bool, err error) {
	if table.Empty() {
		return false, domain.ErrEmptyResult
	}

	if err = s.exporter.Save(table, path); err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			return false, err
		}
		s.log.WithError(err).WithField("file", path).Warn("Error during saving file")
		return false, nil
	}

	s.log.WithField("file", path).Info("File saved")
	return true, nil
}

func (s *Service) WriteXLSX(table domain.RateTable, w io.Writer) error {
	return s.exporter.Write(table, w)
}
