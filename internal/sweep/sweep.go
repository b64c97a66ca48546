// Package sweep runs the scheduled expiry job that closes marketplace
// postings whose seven-day window has passed.
package sweep

import (
	"context"
	"time"

	"timebank/internal/app"
	"timebank/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single sweep run.
const jobTimeout = 30 * time.Second

// Sweeper schedules periodic expiry sweeps over the marketplace.
type Sweeper struct {
	app  *app.App
	log  *logger.Logger
	cron *cron.Cron
}

// NewSweeper returns a sweeper that is not yet started.
func NewSweeper(application *app.App, log *logger.Logger) *Sweeper {
	return &Sweeper{
		app:  application,
		log:  log,
		cron: cron.New(),
	}
}

// Start runs one sweep immediately, then schedules recurring sweeps on the
// given cron spec (for example "@hourly").
func (s *Sweeper) Start(schedule string) error {
	s.run()

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Sugar().Infof("Expiry sweep scheduled: %s", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.app.ProcessExpirySweep(ctx); err != nil {
		s.log.Sugar().Errorf("Expiry sweep failed: %s", err)
	}
}
