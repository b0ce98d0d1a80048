package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls       int
	now         time.Time
	hasDeadline bool
	guilds      []string
	err         error
}

func (f *fakeSweeper) RunDailySweep(ctx context.Context, clock app.Clock, lister app.GuildLister) ([]*app.SweepResult, error) {
	f.calls++
	f.now = clock()
	_, f.hasDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	ids, err := lister.GuildIDs(ctx)
	if err != nil {
		return nil, err
	}
	f.guilds = ids
	results := make([]*app.SweepResult, len(ids))
	for i, id := range ids {
		results[i] = &app.SweepResult{GuildID: id, Date: f.now}
	}
	return results, nil
}

var staticGuilds = app.GuildListerFunc(func(context.Context) ([]string, error) {
	return []string{"g1", "g2"}, nil
})

func TestRunNow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	sweeper := &fakeSweeper{}
	s := NewBirthdayScheduler(sweeper, staticGuilds, ny, "0 0 * * *", time.Minute, logger.Discard())

	results, err := s.RunNow(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, []string{"g1", "g2"}, sweeper.guilds)
	assert.Equal(t, ny, sweeper.now.Location())
	assert.True(t, sweeper.hasDeadline)
}

func TestRunNowPropagatesError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("no guilds")}
	s := NewBirthdayScheduler(sweeper, staticGuilds, time.UTC, "0 0 * * *", 0, logger.Discard())

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, sweeper.err)
	assert.False(t, sweeper.hasDeadline, "no timeout configured")
}

func TestStartSchedulesDailyJob(t *testing.T) {
	s := NewBirthdayScheduler(&fakeSweeper{}, staticGuilds, time.UTC, "0 0 * * *", 0, logger.Discard())
	assert.True(t, s.Next().IsZero())

	require.NoError(t, s.Start())
	defer s.Stop()

	// The engine fills in Next asynchronously after Start.
	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	next := s.Next().In(time.UTC)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewBirthdayScheduler(&fakeSweeper{}, staticGuilds, time.UTC, "every day", 0, logger.Discard())
	assert.Error(t, s.Start())
}
