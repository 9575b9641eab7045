package limit

import (
	"context"
	"time"

	"cardvault/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Jobs is what the scheduler needs from the limit service.
type Jobs interface {
	ResetAllByPeriod(lt models.LimitType) error
	ApplyPendingByPeriod(lt models.LimitType) error
}

// CardSweeper marks past-expiry cards EXPIRED.
type CardSweeper interface {
	ExpireCards(ctx context.Context, now time.Time) (int, error)
}

// Scheduler drives the period-boundary jobs. Resets fire at midnight and
// pending-ceiling application one minute later, so the reset transaction
// commits before the ceilings move; the two never run concurrently for
// the same window.
type Scheduler struct {
	limits Jobs
	cards  CardSweeper
	cron   *cron.Cron
	log    *logrus.Logger
}

func NewScheduler(limits Jobs, cards CardSweeper, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		limits: limits,
		cards:  cards,
		cron:   cron.New(),
		log:    log,
	}
}

// Register wires the cron entries. Separate from Start so tests can
// trigger the job funcs directly.
func (s *Scheduler) Register() error {
	jobs := []struct {
		spec string
		name string
		run  func() error
	}{
		{"0 0 * * *", "reset daily limits", func() error {
			return s.limits.ResetAllByPeriod(models.LimitDaily)
		}},
		{"0 0 1 * *", "reset monthly limits", func() error {
			return s.limits.ResetAllByPeriod(models.LimitMonthly)
		}},
		{"1 0 * * *", "apply pending daily limits", func() error {
			return s.limits.ApplyPendingByPeriod(models.LimitDaily)
		}},
		{"1 0 1 * *", "apply pending monthly limits", func() error {
			return s.limits.ApplyPendingByPeriod(models.LimitMonthly)
		}},
	}
	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			if err := job.run(); err != nil {
				s.log.WithError(err).Errorf("scheduled job failed: %s", job.name)
			}
		})
		if err != nil {
			return err
		}
	}

	if s.cards != nil {
		_, err := s.cron.AddFunc("5 0 * * *", func() {
			if _, err := s.cards.ExpireCards(context.Background(), time.Now()); err != nil {
				s.log.WithError(err).Error("card expiry sweep failed")
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("limit scheduler started")
}

// Stop waits for any running job before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("limit scheduler stopped")
}
