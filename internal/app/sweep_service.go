package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

const defaultSweepConcurrency = 4

// Clock supplies "now" for a sweep.
type Clock func() time.Time

// GuildLister supplies the guilds a daily sweep should cover. The core has no
// notion of "all guilds"; the platform adapter decides.
type GuildLister interface {
	GuildIDs(ctx context.Context) ([]string, error)
}

// GuildListerFunc adapts a plain function to GuildLister.
type GuildListerFunc func(ctx context.Context) ([]string, error)

func (f GuildListerFunc) GuildIDs(ctx context.Context) ([]string, error) { return f(ctx) }

// SweepService matches today's birthdays and announces them per guild.
// Every trigger (cron, console, slash command, CLI) goes through it.
type SweepService struct {
	birthdays   birthday.Repository
	guilds      guild.Repository
	announcer   *Announcer
	locks       *KeyedMutex
	concurrency int
	logger      *logrus.Entry
}

func NewSweepService(
	br birthday.Repository,
	gr guild.Repository,
	announcer *Announcer,
	locks *KeyedMutex, // Shared with GuildService
	concurrency int,
	logger *logrus.Entry,
) *SweepService {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if concurrency <= 0 {
		concurrency = defaultSweepConcurrency
	}
	return &SweepService{
		birthdays:   br,
		guilds:      gr,
		announcer:   announcer,
		locks:       locks,
		concurrency: concurrency,
		logger:      logger.WithField("component", "sweep_service"),
	}
}

// RunDailySweep sweeps every guild reported by lister using clock's "now".
// Results follow the lister's order. Only a failure to list guilds is
// returned as an error; per-guild problems stay inside each result.
func (s *SweepService) RunDailySweep(ctx context.Context, clock Clock, lister GuildLister) ([]*SweepResult, error) {
	now := clock()
	guildIDs, err := lister.GuildIDs(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list guilds for daily sweep")
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"date":   now.Format("2006-01-02"),
		"guilds": len(guildIDs),
	}).Info("Daily birthday sweep started")

	results := make([]*SweepResult, len(guildIDs))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, guildID := range guildIDs {
		i, guildID := i, guildID
		p.Go(func() {
			results[i] = s.RunGuildSweep(ctx, guildID, now)
		})
	}
	p.Wait()

	sent, skipped, failed := SweepTotals(results)
	s.logger.WithFields(logrus.Fields{
		"sent":    sent,
		"skipped": skipped,
		"failed":  failed,
	}).Info("Daily birthday sweep completed")
	return results, nil
}

// RunGuildSweep announces every birthday matching now's month and day in one
// guild. Sweeps of the same guild never overlap; calling it twice on the same
// day sends twice.
func (s *SweepService) RunGuildSweep(ctx context.Context, guildID string, now time.Time) *SweepResult {
	unlock := s.locks.Lock(guildID)
	defer unlock()

	md := birthday.MonthDayOf(now)
	result := &SweepResult{GuildID: guildID, Date: now}
	log := s.logger.WithFields(logrus.Fields{"guild_id": guildID, "month_day": md.String()})

	records, err := s.birthdays.ListMatching(ctx, md.Month, md.Day)
	if err != nil {
		log.WithError(err).Error("Failed to list matching birthdays")
		result.Err = fmt.Errorf("failed to list birthdays for %s: %w", md, err)
		return result
	}

	cfg, err := s.guilds.Get(ctx, guildID)
	switch {
	case errors.Is(err, guild.ErrNotConfigured):
		log.WithField("matches", len(records)).Info("No announcement channel configured")
		for _, rec := range records {
			result.add(Outcome{UserID: rec.UserID, Status: OutcomeSkippedNoConfig})
		}
		return result
	case err != nil:
		log.WithError(err).Error("Failed to read guild config")
		for _, rec := range records {
			result.add(Outcome{UserID: rec.UserID, Status: OutcomeFailedStore, Err: err})
		}
		return result
	}

	if !cfg.Enabled() {
		for _, rec := range records {
			result.add(Outcome{UserID: rec.UserID, Status: OutcomeSkippedDisabled})
		}
		return result
	}

	result.Configured = true
	if len(records) == 0 {
		log.Debug("No birthdays today")
		return result
	}
	log.WithField("matches", len(records)).Info("Announcing birthdays")

	outcomes := make([]Outcome, len(records))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, rec := range records {
		i, rec := i, rec
		p.Go(func() {
			outcomes[i] = s.announcer.Announce(ctx, guildID, cfg.TargetID(), rec.UserID)
		})
	}
	p.Wait()

	for _, o := range outcomes {
		result.add(o)
	}
	return result
}
