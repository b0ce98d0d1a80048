package app

import (
	"context"
	"errors"
	"time"

	"birthday_notification_bot/internal/domain/announcement"

	"github.com/sirupsen/logrus"
)

const defaultDispatchTimeout = 10 * time.Second

// Announcer sends one announcement through the dispatch boundary and turns
// the result into an Outcome. It never retries and never touches guild config.
type Announcer struct {
	dispatcher announcement.Dispatcher
	timeout    time.Duration
	logger     *logrus.Entry
}

func NewAnnouncer(d announcement.Dispatcher, timeout time.Duration, logger *logrus.Entry) *Announcer {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &Announcer{
		dispatcher: d,
		timeout:    timeout,
		logger:     logger.WithField("component", "announcer"),
	}
}

func (a *Announcer) Announce(ctx context.Context, guildID, targetID, userID string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	log := a.logger.WithFields(logrus.Fields{
		"guild_id":  guildID,
		"target_id": targetID,
		"user_id":   userID,
	})

	out := Outcome{UserID: userID, TargetID: targetID}
	err := a.dispatcher.Announce(ctx, guildID, targetID, userID)
	switch {
	case err == nil:
		out.Status = OutcomeSent
		log.Info("Sent birthday announcement")
	case errors.Is(err, announcement.ErrTargetNotFound):
		out.Status = OutcomeSkippedChannelNotFound
		out.Err = err
		log.WithError(err).Warn("Configured announcement channel not found")
	default:
		out.Status = OutcomeFailedDispatch
		out.Err = err
		log.WithError(err).Error("Failed to send birthday announcement")
	}
	return out
}
