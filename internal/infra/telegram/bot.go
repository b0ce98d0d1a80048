package telegram

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"birthday_notification_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Bot owns the long-polling Telegram connection. A Telegram group chat plays
// the role of a guild; its numeric chat id is the guild id.
type Bot struct {
	bot      *telebot.Bot
	sender   *telebot.Bot // announcements only, bounded by the dispatch timeout
	services app.Services
	logger   *logrus.Entry
}

// NewBot connects to the Bot API to validate the token. Call SetServices
// before Start. Every announcement request gives up after dispatchTimeout.
func NewBot(token string, dispatchTimeout time.Duration, logger *logrus.Entry) (*Bot, error) {
	log := logger.WithField("component", "telegram")
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{
					"text":      c.Text(),
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
				})
			}
			entry.Error("Telegram handler error")
		},
	}
	b, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	s, err := newSender("", token, dispatchTimeout)
	if err != nil {
		return nil, err
	}
	return &Bot{bot: b, sender: s, logger: log}, nil
}

// newSender builds an offline client for outgoing announcements. The poller
// keeps its own client since long polling outlives the dispatch timeout.
func newSender(apiURL, token string, timeout time.Duration) (*telebot.Bot, error) {
	s, err := telebot.NewBot(telebot.Settings{
		URL:     apiURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram sender: %w", err)
	}
	return s, nil
}

// Dispatcher returns the announcement dispatcher bound to this bot.
func (b *Bot) Dispatcher() *Dispatcher {
	return NewDispatcher(b.sender)
}

// SetServices wires the app layer and registers all handlers.
func (b *Bot) SetServices(services app.Services) {
	b.services = services
	RegisterBotCommands(b.bot, b.logger)
	RegisterBirthdayHandlers(b.bot, services.Birthdays, b.logger)
	RegisterAdminHandlers(b.bot, services, groupAdminCheck, b.logger)
	b.logger.Info("Telegram handlers registered")
}

// Start polls for updates until Stop is called. It blocks.
func (b *Bot) Start() {
	b.logger.Info("Starting Telegram poller")
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.logger.Info("Stopping Telegram poller")
	b.bot.Stop()
}

// Status implements the console status report.
func (b *Bot) Status() string {
	return fmt.Sprintf("Transport: telegram\nBot: @%s", b.bot.Me.Username)
}

// groupAdminCheck reports whether user administers chat.
func groupAdminCheck(c telebot.Context) (bool, error) {
	admins, err := c.Bot().AdminsOf(c.Chat())
	if err != nil {
		return false, err
	}
	for _, m := range admins {
		if m.User != nil && m.User.ID == c.Sender().ID {
			return true, nil
		}
	}
	return false, nil
}

func userID(c telebot.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func isGroup(chat *telebot.Chat) bool {
	if chat == nil {
		return false
	}
	return chat.Type == telebot.ChatGroup || chat.Type == telebot.ChatSuperGroup
}
