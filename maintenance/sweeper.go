// Package maintenance runs scheduled housekeeping for the staging area.
package maintenance

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/transcribekit/upload"
)

// SweeperConfig configures the staging sweeper.
type SweeperConfig struct {
	// Schedule is a cron expression. Defaults to every 10 minutes.
	Schedule string
	// MaxAge is how long a staged artifact may linger before removal.
	// Artifacts are request-scoped; anything older was orphaned by a crash
	// or an abandoned transfer. Defaults to 1 hour.
	MaxAge time.Duration
}

// Sweeper periodically removes orphaned staging artifacts.
type Sweeper struct {
	cron   *cron.Cron
	intake *upload.Intake
	maxAge time.Duration
	log    *logrus.Entry
}

// NewSweeper schedules the sweep. Call Start to begin and Stop at shutdown.
func NewSweeper(intake *upload.Intake, cfg SweeperConfig, log *logrus.Logger) (*Sweeper, error) {
	if intake == nil {
		return nil, errors.New("maintenance: intake required")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "*/10 * * * *"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Sweeper{
		cron:   cron.New(),
		intake: intake,
		maxAge: cfg.MaxAge,
		log:    log.WithField("component", "maintenance.sweeper"),
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) sweep() {
	removed, err := s.intake.SweepOlderThan(s.maxAge)
	if err != nil {
		s.log.WithError(err).Warn("sweep failed")
		return
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("orphaned artifacts swept")
	}
}

// Start begins the schedule in its own goroutine.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
