package rate

import (
	"context"
	"nburates/internal/domain"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, fetcher *MockRateFetcher, exporter *MockTableExporter, dir string, interval time.Duration) *Scheduler {
	t.Helper()
	log, _ := nullLogger()
	s := NewScheduler(NewService(fetcher, exporter, log), []string{"USD", "EUR"}, dir, interval, log)
	s.now = func() time.Time { return time.Date(2022, 1, 3, 15, 4, 5, 0, time.UTC) }
	return s
}

func TestNewScheduler_Constructs(t *testing.T) {
	s := newTestScheduler(t, new(MockRateFetcher), new(MockTableExporter), t.TempDir(), time.Hour)
	require.NotNil(t, s)
	require.False(t, s.running())
	require.Equal(t, time.Hour, s.interval)
}

func TestNewScheduler_DefaultsIntervalWhenInvalid(t *testing.T) {
	s := newTestScheduler(t, new(MockRateFetcher), new(MockTableExporter), t.TempDir(), 0)
	require.Equal(t, 24*time.Hour, s.interval)
}

func TestScheduler_Shutdown_NoScheduler_ReturnsNil(t *testing.T) {
	s := newTestScheduler(t, new(MockRateFetcher), new(MockTableExporter), t.TempDir(), time.Hour)
	require.NoError(t, s.Shutdown())
	require.False(t, s.running())
}

func TestScheduler_Validate(t *testing.T) {
	log, _ := nullLogger()
	s := NewScheduler(NewService(new(MockRateFetcher), new(MockTableExporter), log), nil, t.TempDir(), time.Hour, log)
	require.ErrorIs(t, s.Validate(), domain.ErrInvalidInput)

	s = newTestScheduler(t, new(MockRateFetcher), new(MockTableExporter), t.TempDir(), time.Hour)
	require.NoError(t, s.Validate())
}

func TestScheduler_ExportToday(t *testing.T) {
	fetcher := new(MockRateFetcher)
	exporter := new(MockTableExporter)
	dir := t.TempDir()
	s := newTestScheduler(t, fetcher, exporter, dir, time.Hour)

	table := domain.RateTable{
		Currencies: []string{"USD", "EUR"},
		Rows:       []domain.Row{{Date: jan3}},
	}
	fetcher.On("Fetch", mock.Anything, mock.MatchedBy(func(q domain.RateQuery) bool {
		return q.Start().Equal(jan3) && q.End().Equal(jan3)
	})).Return(table, nil).Once()
	exporter.On("Save", table, filepath.Join(dir, "rates_USD_EUR_2022-01-03_2022-01-03.xlsx")).Return(nil).Once()

	path, err := s.ExportToday(context.Background())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "rates_USD_EUR_2022-01-03_2022-01-03.xlsx"), path)
	fetcher.AssertExpectations(t)
	exporter.AssertExpectations(t)
}

func TestScheduler_ExportToday_SaveFailure(t *testing.T) {
	fetcher := new(MockRateFetcher)
	exporter := new(MockTableExporter)
	s := newTestScheduler(t, fetcher, exporter, t.TempDir(), time.Hour)

	table := domain.RateTable{Currencies: []string{"USD", "EUR"}, Rows: []domain.Row{{Date: jan3}}}
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(table, nil).Once()
	exporter.On("Save", mock.Anything, mock.Anything).Return(os.ErrPermission).Once()

	_, err := s.ExportToday(context.Background())
	require.ErrorIs(t, err, domain.ErrExportFailure)
}

func TestScheduler_Start_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	fetcher := new(MockRateFetcher)
	exporter := new(MockTableExporter)
	s := newTestScheduler(t, fetcher, exporter, t.TempDir(), time.Hour)

	ran := make(chan struct{}, 1)
	table := domain.RateTable{Currencies: []string{"USD", "EUR"}, Rows: []domain.Row{{Date: jan3}}}
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(table, nil)
	exporter.On("Save", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("export job did not run on start")
	}

	cancel()

	require.Eventually(t, func() bool { return !s.running() }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_Shutdown_AfterStart_Idempotent(t *testing.T) {
	fetcher := new(MockRateFetcher)
	exporter := new(MockTableExporter)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(domain.RateTable{}, nil).Maybe()
	s := newTestScheduler(t, fetcher, exporter, t.TempDir(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.True(t, s.running())

	require.NoError(t, s.Shutdown())
	require.False(t, s.running())

	require.NoError(t, s.Shutdown())
}

func TestScheduler_CancelAndShutdownTogether_StopsOnce(t *testing.T) {
	fetcher := new(MockRateFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(domain.RateTable{}, nil).Maybe()
	s := newTestScheduler(t, fetcher, new(MockTableExporter), t.TempDir(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	started := time.Now()
	cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Shutdown()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.False(t, s.running())
	require.Less(t, time.Since(started), 5*time.Second)
}
