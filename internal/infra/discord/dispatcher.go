package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"birthday_notification_bot/internal/domain/announcement"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Discord JSON error codes that mean the channel is gone or unreachable.
const (
	jsonErrorUnknownChannel = 10003
	jsonErrorMissingAccess  = 50001
)

// messageCreator is the slice of rest.Rest the dispatcher needs.
type messageCreator interface {
	CreateMessage(channelID snowflake.ID, messageCreate discord.MessageCreate, opts ...rest.RequestOpt) (*discord.Message, error)
}

// Dispatcher posts birthday announcements into guild text channels.
type Dispatcher struct {
	rest messageCreator
}

func NewDispatcher(r messageCreator) *Dispatcher {
	return &Dispatcher{rest: r}
}

// AnnouncementText is the message posted for userID.
func AnnouncementText(userID string) string {
	return fmt.Sprintf("🎉 Happy Birthday <@%s>! 🎂", userID)
}

func (d *Dispatcher) Announce(ctx context.Context, guildID, targetID, userID string) error {
	channelID, err := snowflake.Parse(targetID)
	if err != nil {
		return fmt.Errorf("%w: channel id %q in guild %s", announcement.ErrTargetNotFound, targetID, guildID)
	}

	msg := discord.NewMessageCreateBuilder().
		SetContent(AnnouncementText(userID)).
		Build()
	if _, err := d.rest.CreateMessage(channelID, msg, rest.WithCtx(ctx)); err != nil {
		if isMissingChannel(err) {
			return fmt.Errorf("%w: channel %s in guild %s: %v", announcement.ErrTargetNotFound, targetID, guildID, err)
		}
		return fmt.Errorf("%w: %v", announcement.ErrTransport, err)
	}
	return nil
}

func isMissingChannel(err error) bool {
	var restErr *rest.Error
	if !errors.As(err, &restErr) {
		return false
	}
	switch restErr.Code {
	case jsonErrorUnknownChannel, jsonErrorMissingAccess:
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
