package telegram

import (
	"context"
	"errors"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/infra/reply"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBirthdayHandlers registers the per-user commands. They work in
// private chats and in groups alike.
func RegisterBirthdayHandlers(b *telebot.Bot, birthdays *app.BirthdayService, baseLogger *logrus.Entry) {
	b.Handle("/birthday_set", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/birthday_set",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /birthday_set MM-DD-YYYY")
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		rec, err := birthdays.SetBirthday(ctx, userID(c), args[0])
		switch {
		case errors.Is(err, birthday.ErrInvalidDate):
			return c.Send(reply.InvalidDate)
		case err != nil:
			handlerLogger.WithError(err).Error("Failed to set birthday")
			return c.Send(reply.SaveFailed)
		}
		return c.Send(reply.BirthdaySet(rec))
	})

	b.Handle("/birthday_get", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/birthday_get",
			"sender_id": c.Sender().ID,
		})

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		rec, err := birthdays.GetBirthday(ctx, userID(c))
		switch {
		case errors.Is(err, birthday.ErrNotFound):
			return c.Send(reply.NoBirthday + " Use /birthday_set MM-DD-YYYY.")
		case err != nil:
			handlerLogger.WithError(err).Error("Failed to get birthday")
			return c.Send(reply.InternalError)
		}
		return c.Send(reply.BirthdayShow(rec))
	})
}
