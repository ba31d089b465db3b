package rate

import (
	"context"
	"fmt"
	"nburates/internal/domain"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultExportInterval = 24 * time.Hour

type Scheduler struct {
	service    *Service
	currencies []string
	outputDir  string
	interval   time.Duration
	log        logrus.FieldLogger
	now        func() time.Time
	// -----
	mu      sync.Mutex
	sched   gocron.Scheduler
	stopped chan struct{}
}

func NewScheduler(service *Service, currencies []string, outputDir string, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = defaultExportInterval
	}
	return &Scheduler{
		service:    service,
		currencies: currencies,
		outputDir:  outputDir,
		interval:   interval,
		log:        log,
		now:        time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		path, expErr := s.ExportToday(jobCtx)
		if expErr != nil {
			s.log.Errorf("Export job %s failed: %v", execID, expErr)
			return
		}
		s.log.Infof("Export job %s wrote %s", execID, path)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			s.log.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// Shutdown stops the scheduler once. A concurrent call waits for the running shutdown and
// returns nil.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	if sched != nil {
		s.stopped = make(chan struct{})
	}
	stopped := s.stopped
	s.mu.Unlock()

	if sched == nil {
		if stopped != nil {
			<-stopped
		}
		return nil
	}
	defer close(stopped)
	return sched.Shutdown()
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// ExportToday fetches today's rates and saves them under the output directory.
func (s *Scheduler) ExportToday(ctx context.Context) (string, error) {
	today := s.now().Format(domain.DateLayout)
	q, err := domain.NewRateQuery(s.currencies, today, today)
	if err != nil {
		return "", err
	}

	table, err := s.service.Fetch(ctx, q)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.outputDir, q.FileName())
	ok, err := s.service.Export(table, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrExportFailure, path)
	}
	return path, nil
}

// Validate reports configuration problems before the scheduler is started.
func (s *Scheduler) Validate() error {
	if len(s.currencies) == 0 {
		return fmt.Errorf("%w: scheduler has no currencies configured", domain.ErrInvalidInput)
	}
	return nil
}
