package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// HelpText lists the commands available in Telegram.
func HelpText() string {
	var helpText strings.Builder
	helpText.WriteString("Available commands:\n\n")
	helpText.WriteString("/birthday_set MM-DD-YYYY\n - Set your birthday.\n\n")
	helpText.WriteString("/birthday_get\n - Show your stored birthday.\n\n")
	helpText.WriteString("/birthday_channel [chat_id]\n - Announce birthdays in this group, or in the given chat (group admins only).\n\n")
	helpText.WriteString("/birthday_disable\n - Stop birthday announcements for this group (group admins only).\n\n")
	helpText.WriteString("/birthday_today\n - Send today's birthday messages now.\n\n")
	helpText.WriteString("/ping\n - Check that the bot is alive.")
	return helpText.String()
}

func RegisterBotCommands(b *telebot.Bot, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		startHelpLogger.WithFields(logrus.Fields{
			"command":   "/start",
			"sender_id": c.Sender().ID,
		}).Info("Processing /start command")
		return c.Send("Hi! I announce birthdays in your group. Use /help to see what I can do.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		startHelpLogger.WithFields(logrus.Fields{
			"command":   "/help",
			"sender_id": c.Sender().ID,
		}).Info("Processing /help command")
		return c.Send(HelpText())
	})

	b.Handle("/ping", func(c telebot.Context) error {
		return c.Send("pong")
	})
}
