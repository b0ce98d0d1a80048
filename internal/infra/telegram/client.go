package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	"birthday_notification_bot/internal/domain/announcement"

	"gopkg.in/telebot.v3"
)

// sender is the part of *telebot.Bot the dispatcher needs.
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Dispatcher posts birthday announcements into Telegram chats. The target id
// is the numeric chat id of a group, supergroup or channel.
type Dispatcher struct {
	bot sender
}

func NewDispatcher(b sender) *Dispatcher {
	return &Dispatcher{bot: b}
}

// AnnouncementText is the HTML message posted for userID.
func AnnouncementText(userID string) string {
	return fmt.Sprintf(`🎉 Happy Birthday <a href="tg://user?id=%s">friend</a>! 🎂`, html.EscapeString(userID))
}

func (d *Dispatcher) Announce(ctx context.Context, guildID, targetID, userID string) error {
	chatID, err := strconv.ParseInt(targetID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: chat id %q for group %s", announcement.ErrTargetNotFound, targetID, guildID)
	}
	// telebot has no per-request context. The sender's HTTP client bounds the
	// request itself; here only cancellation before sending is honoured.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", announcement.ErrTransport, err)
	}

	_, err = d.bot.Send(telebot.ChatID(chatID), AnnouncementText(userID), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	if err != nil {
		if isMissingChat(err) {
			return fmt.Errorf("%w: chat %s for group %s: %v", announcement.ErrTargetNotFound, targetID, guildID, err)
		}
		return fmt.Errorf("%w: %v", announcement.ErrTransport, err)
	}
	return nil
}

func isMissingChat(err error) bool {
	return errors.Is(err, telebot.ErrChatNotFound) ||
		errors.Is(err, telebot.ErrKickedFromGroup) ||
		errors.Is(err, telebot.ErrKickedFromSuperGroup) ||
		errors.Is(err, telebot.ErrKickedFromChannel)
}
