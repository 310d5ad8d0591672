package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// Scheduler triggers the portfolio worker on cron specs in the trading
// timezone. SkipIfStillRunning guarantees iterations never overlap: a
// trigger that fires while a run is in flight is dropped.
type Scheduler struct {
	cron   *cron.Cron
	worker *PortfolioWorker
}

// NewScheduler creates the scheduler. specs are standard 5-field cron
// expressions evaluated in loc.
func NewScheduler(worker *PortfolioWorker, specs []string, loc *time.Location) (*Scheduler, error) {
	log := logger.Get()

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{cron: c, worker: worker}

	for _, spec := range specs {
		spec := spec
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			if err := worker.RunOnce(ctx); err != nil {
				log.Errorw("scheduled iteration failed", "spec", spec, "error", err)
			}
		})
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "cron spec %q: %v", spec, err)
		}
	}

	return s, nil
}

// Start begins firing triggers
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Get().Infow("scheduler started", "entries", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for a running iteration to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Info("scheduler stopped")
}
