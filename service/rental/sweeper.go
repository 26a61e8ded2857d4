package rental

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper runs the overdue sweep on a schedule. SkipIfStillRunning keeps a
// slow sweep from piling up behind itself; the sweep is idempotent either way.
type Sweeper struct {
	svc Service
	log *slog.Logger
	c   *cron.Cron
}

func NewSweeper(svc Service, log *slog.Logger) *Sweeper {
	return &Sweeper{
		svc: svc,
		log: log,
		c:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the sweep under the given cron schedule (e.g. "@hourly")
// and starts the scheduler.
func (s *Sweeper) Start(schedule string) error {
	_, err := s.c.AddFunc(schedule, s.runOnce)
	if err != nil {
		return err
	}
	s.c.Start()
	return nil
}

func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.svc.SweepOverdue(ctx)
	if err != nil {
		s.log.Error("overdue sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.log.Info("overdue sweep", "flagged", n)
	}
}
