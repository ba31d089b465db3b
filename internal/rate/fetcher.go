package rate

import (
	"fmt"
	"nburates/internal/adapters"
	"nburates/internal/config"

	"github.com/sirupsen/logrus"
)

// NewFetcher picks the retrieval protocol by strategy name.
func NewFetcher(strategy string, client adapters.RateClient, log logrus.FieldLogger, workers int) (adapters.RateFetcher, error) {
	switch strategy {
	case config.StrategyDaily, "":
		return NewDailyFetcher(client, log, workers), nil
	case config.StrategyRange:
		return NewRangeFetcher(client, log), nil
	}
	return nil, fmt.Errorf("unknown fetch strategy %q", strategy)
}
