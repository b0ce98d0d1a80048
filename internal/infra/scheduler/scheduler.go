package scheduler

import (
	"context"
	"fmt"
	"time"

	"birthday_notification_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is the part of app.SweepService the scheduler drives.
type Sweeper interface {
	RunDailySweep(ctx context.Context, clock app.Clock, lister app.GuildLister) ([]*app.SweepResult, error)
}

type BirthdayScheduler struct {
	cronEngine    *cron.Cron
	sweeper       Sweeper
	guilds        app.GuildLister
	location      *time.Location
	cronSpecDaily string
	jobTimeout    time.Duration
	logger        *logrus.Entry
}

func NewBirthdayScheduler(
	sweeper Sweeper,
	guilds app.GuildLister,
	location *time.Location, // e.g. America/New_York; the cron spec is read in this zone
	cronSpecDaily string, // e.g. "0 0 * * *" (midnight)
	jobTimeout time.Duration,
	logger *logrus.Entry,
) *BirthdayScheduler {
	if location == nil {
		location = time.Local
	}
	return &BirthdayScheduler{
		cronEngine:    cron.New(cron.WithLocation(location)),
		sweeper:       sweeper,
		guilds:        guilds,
		location:      location,
		cronSpecDaily: cronSpecDaily,
		jobTimeout:    jobTimeout,
		logger:        logger.WithField("component", "scheduler"),
	}
}

// Start registers the daily job and starts the cron engine.
func (s *BirthdayScheduler) Start() error {
	s.logger.Info("Starting birthday scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecDaily, func() {
		s.logger.Info("Cron job triggered for daily birthday sweep.")
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.WithError(err).Error("Daily birthday sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add daily birthday cron job %q: %w", s.cronSpecDaily, err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"spec":     s.cronSpecDaily,
		"location": s.location.String(),
	}).Info("Birthday scheduler started.")
	return nil
}

// RunNow performs the daily sweep immediately. The cron job and the console
// "birthday" command both end up here.
func (s *BirthdayScheduler) RunNow(ctx context.Context) ([]*app.SweepResult, error) {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}
	return s.sweeper.RunDailySweep(ctx, s.now, s.guilds)
}

func (s *BirthdayScheduler) now() time.Time {
	return time.Now().In(s.location)
}

// Next returns the next time the daily job fires, or the zero time before Start.
func (s *BirthdayScheduler) Next() time.Time {
	entries := s.cronEngine.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *BirthdayScheduler) Stop() {
	s.logger.Info("Stopping birthday scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Birthday scheduler gracefully stopped.")
}
