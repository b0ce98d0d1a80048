package telegram

import (
	"context"
	"strconv"
	"time"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/infra/reply"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const handlerTimeout = 30 * time.Second

// AdminCheck reports whether the sender of c administers c's chat.
type AdminCheck func(c telebot.Context) (bool, error)

var (
	disableMarkup     = &telebot.ReplyMarkup{}
	btnDisableConfirm = disableMarkup.Data("Yes, disable", "bd_disable_yes")
	btnDisableCancel  = disableMarkup.Data("Cancel", "bd_disable_no")
)

func init() {
	disableMarkup.Inline(disableMarkup.Row(btnDisableConfirm, btnDisableCancel))
}

// RegisterAdminHandlers registers the group configuration commands. Changing
// the announcement target requires the sender to be a group administrator.
func RegisterAdminHandlers(b *telebot.Bot, services app.Services, isAdmin AdminCheck, baseLogger *logrus.Entry) {
	b.Handle("/birthday_channel", func(c telebot.Context) error {
		handlerLogger := handlerLog(baseLogger, "/birthday_channel", c)
		handlerLogger.Info("Command received")

		if !requireGroupAdmin(c, isAdmin, handlerLogger) {
			return nil
		}

		targetID, ok := parseTargetArg(c.Args(), c.Chat().ID)
		if !ok {
			return c.Send("Usage: /birthday_channel [chat_id]")
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		guildID := strconv.FormatInt(c.Chat().ID, 10)
		if err := services.Guilds.SetAnnouncementChannel(ctx, guildID, targetID); err != nil {
			handlerLogger.WithError(err).Error("Failed to set announcement chat")
			return c.Send(reply.ChannelFailed)
		}
		handlerLogger.WithField("target_id", targetID).Info("Announcement chat set")

		mention := "this chat"
		if targetID != guildID {
			mention = "chat " + targetID
		}
		return c.Send(reply.ChannelSet(mention))
	})

	b.Handle("/birthday_disable", func(c telebot.Context) error {
		handlerLogger := handlerLog(baseLogger, "/birthday_disable", c)
		handlerLogger.Info("Command received")

		if !requireGroupAdmin(c, isAdmin, handlerLogger) {
			return nil
		}
		return c.Send("Disable birthday announcements for this group?", &telebot.SendOptions{ReplyMarkup: disableMarkup})
	})

	b.Handle(&btnDisableConfirm, func(c telebot.Context) error {
		handlerLogger := handlerLog(baseLogger, "disable_confirm", c)
		if !isGroup(c.Chat()) {
			return c.Respond(&telebot.CallbackResponse{Text: reply.GuildOnly})
		}
		ok, err := isAdmin(c)
		if err != nil || !ok {
			if err != nil {
				handlerLogger.WithError(err).Error("Failed to check admin rights")
			}
			return c.Respond(&telebot.CallbackResponse{Text: reply.NeedGroupAdmin})
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		alreadyDisabled, err := services.Guilds.Disable(ctx, strconv.FormatInt(c.Chat().ID, 10))
		var text string
		switch {
		case err != nil:
			handlerLogger.WithError(err).Error("Failed to disable announcements")
			text = reply.DisableFailed
		case alreadyDisabled:
			text = reply.AlreadyDisabled
		default:
			handlerLogger.Info("Announcements disabled")
			text = reply.Disabled
		}
		if err := c.Respond(); err != nil {
			handlerLogger.WithError(err).Warn("Failed to acknowledge callback")
		}
		return c.Edit(text)
	})

	b.Handle(&btnDisableCancel, func(c telebot.Context) error {
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Delete()
	})

	b.Handle("/birthday_today", func(c telebot.Context) error {
		handlerLogger := handlerLog(baseLogger, "/birthday_today", c)
		handlerLogger.Info("Command received")

		if !isGroup(c.Chat()) {
			return c.Send(reply.GuildOnly)
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		result := services.Sweeps.RunGuildSweep(ctx, strconv.FormatInt(c.Chat().ID, 10), services.Clock())
		handlerLogger.WithFields(logrus.Fields{
			"sent":    result.Sent,
			"skipped": result.Skipped,
			"failed":  result.Failed,
		}).Info("Manual birthday announcement finished")
		return c.Send(reply.GuildSweep(result))
	})
}

func handlerLog(base *logrus.Entry, handler string, c telebot.Context) *logrus.Entry {
	fields := logrus.Fields{"handler": handler}
	if c.Sender() != nil {
		fields["sender_id"] = c.Sender().ID
	}
	if c.Chat() != nil {
		fields["chat_id"] = c.Chat().ID
	}
	return base.WithFields(fields)
}

func requireGroupAdmin(c telebot.Context, isAdmin AdminCheck, log *logrus.Entry) bool {
	if !isGroup(c.Chat()) {
		_ = c.Send(reply.GuildOnly)
		return false
	}
	ok, err := isAdmin(c)
	if err != nil {
		log.WithError(err).Error("Failed to check admin rights")
		_ = c.Send(reply.InternalError)
		return false
	}
	if !ok {
		log.Warn("Unauthorized access attempt")
		_ = c.Send(reply.NeedGroupAdmin)
		return false
	}
	return true
}

// parseTargetArg picks the announcement chat: the current chat when no
// argument is given, otherwise a numeric chat id.
func parseTargetArg(args []string, currentChat int64) (string, bool) {
	switch len(args) {
	case 0:
		return strconv.FormatInt(currentChat, 10), true
	case 1:
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id == 0 {
			return "", false
		}
		return strconv.FormatInt(id, 10), true
	default:
		return "", false
	}
}
