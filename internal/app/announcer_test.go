package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"birthday_notification_bot/internal/domain/announcement"

	"github.com/stretchr/testify/assert"
)

type deadlineDispatcher struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineDispatcher) Announce(ctx context.Context, _, _, _ string) error {
	d.deadline, d.ok = ctx.Deadline()
	return nil
}

func TestAnnouncerAppliesTimeout(t *testing.T) {
	d := &deadlineDispatcher{}
	a := NewAnnouncer(d, 3*time.Second, testLogger)

	before := time.Now()
	out := a.Announce(context.Background(), "g1", "c1", "42")

	assert.Equal(t, OutcomeSent, out.Status)
	assert.True(t, d.ok)
	assert.WithinDuration(t, before.Add(3*time.Second), d.deadline, time.Second)
}

func TestAnnouncerMapsErrors(t *testing.T) {
	d := newFakeDispatcher()
	d.errs["gone"] = announcement.ErrTargetNotFound
	d.errs["down"] = errors.New("connection reset")
	a := NewAnnouncer(d, 0, testLogger)

	assert.Equal(t, OutcomeSkippedChannelNotFound, a.Announce(context.Background(), "g", "c", "gone").Status)
	assert.Equal(t, OutcomeFailedDispatch, a.Announce(context.Background(), "g", "c", "down").Status)
	assert.Equal(t, OutcomeSent, a.Announce(context.Background(), "g", "c", "ok").Status)
}
