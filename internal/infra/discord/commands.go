package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/infra/reply"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/sirupsen/logrus"
)

const (
	commandBirthday = "birthday"
	commandPing     = "ping"

	subcommandSet           = "set"
	subcommandGet           = "get"
	subcommandChannel       = "channel"
	subcommandDisable       = "disable"
	subcommandAnnounceToday = "announce-today"

	commandTimeout = 30 * time.Second
)

var commands = []discord.ApplicationCommandCreate{
	discord.SlashCommandCreate{
		Name:        commandBirthday,
		Description: "Birthday management commands",
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionSubCommand{
				Name:        subcommandSet,
				Description: "Set your birthday",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionString{
						Name:        "date",
						Description: "Your birthday (MM-DD-YYYY)",
						Required:    true,
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        subcommandGet,
				Description: "Show your stored birthday",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        subcommandChannel,
				Description: "Set the birthday announcement channel",
				Options: []discord.ApplicationCommandOption{
					discord.ApplicationCommandOptionChannel{
						Name:         "channel",
						Description:  "Channel for birthday announcements",
						Required:     true,
						ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
					},
				},
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        subcommandDisable,
				Description: "Disable birthday announcements",
			},
			discord.ApplicationCommandOptionSubCommand{
				Name:        subcommandAnnounceToday,
				Description: "Send all birthday messages for today into the birthday channel now",
			},
		},
	},
	discord.SlashCommandCreate{
		Name:        commandPing,
		Description: "Ping the bot to receive a pong response",
	},
}

func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()
	log := b.logger.WithFields(logrus.Fields{
		"command": data.CommandName(),
		"user_id": event.User().ID.String(),
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Panic in slash command handler")
			b.respond(event, reply.InternalError, true)
		}
	}()

	switch data.CommandName() {
	case commandPing:
		b.respond(event, fmt.Sprintf("*pong* Latency: %dms", b.Latency().Milliseconds()), false)
	case commandBirthday:
		if data.SubCommandName == nil {
			b.respond(event, reply.InternalError, true)
			return
		}
		log = log.WithField("subcommand", *data.SubCommandName)
		log.Info("Command received")

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		switch *data.SubCommandName {
		case subcommandSet:
			b.handleSet(ctx, event, data, log)
		case subcommandGet:
			b.handleGet(ctx, event, log)
		case subcommandChannel:
			b.handleChannel(ctx, event, data, log)
		case subcommandDisable:
			b.handleDisable(ctx, event, log)
		case subcommandAnnounceToday:
			b.handleAnnounceToday(ctx, event, log)
		default:
			b.respond(event, reply.InternalError, true)
		}
	default:
		log.Warn("Unknown command")
	}
}

func (b *Bot) handleSet(ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData, log *logrus.Entry) {
	rec, err := b.services.Birthdays.SetBirthday(ctx, event.User().ID.String(), data.String("date"))
	switch {
	case errors.Is(err, birthday.ErrInvalidDate):
		b.respond(event, reply.InvalidDate, true)
	case err != nil:
		log.WithError(err).Error("Failed to set birthday")
		b.respond(event, reply.SaveFailed, true)
	default:
		b.respond(event, reply.BirthdaySet(rec), true)
	}
}

func (b *Bot) handleGet(ctx context.Context, event *events.ApplicationCommandInteractionCreate, log *logrus.Entry) {
	rec, err := b.services.Birthdays.GetBirthday(ctx, event.User().ID.String())
	switch {
	case errors.Is(err, birthday.ErrNotFound):
		b.respond(event, reply.NoBirthday+" Use /birthday set.", true)
	case err != nil:
		log.WithError(err).Error("Failed to get birthday")
		b.respond(event, reply.InternalError, true)
	default:
		b.respond(event, reply.BirthdayShow(rec), true)
	}
}

func (b *Bot) handleChannel(ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData, log *logrus.Entry) {
	guildID, ok := b.requireManager(event)
	if !ok {
		return
	}
	channelID := data.Snowflake("channel")
	if err := b.services.Guilds.SetAnnouncementChannel(ctx, guildID, channelID.String()); err != nil {
		log.WithError(err).Error("Failed to set announcement channel")
		b.respond(event, reply.ChannelFailed, true)
		return
	}
	b.respond(event, reply.ChannelSet(discord.ChannelMention(channelID)), false)
}

func (b *Bot) handleDisable(ctx context.Context, event *events.ApplicationCommandInteractionCreate, log *logrus.Entry) {
	guildID, ok := b.requireManager(event)
	if !ok {
		return
	}
	alreadyDisabled, err := b.services.Guilds.Disable(ctx, guildID)
	switch {
	case err != nil:
		log.WithError(err).Error("Failed to disable announcements")
		b.respond(event, reply.DisableFailed, true)
	case alreadyDisabled:
		b.respond(event, reply.AlreadyDisabled, true)
	default:
		b.respond(event, reply.Disabled, false)
	}
}

func (b *Bot) handleAnnounceToday(ctx context.Context, event *events.ApplicationCommandInteractionCreate, log *logrus.Entry) {
	guildID := event.GuildID()
	if guildID == nil {
		b.respond(event, reply.GuildOnly, true)
		return
	}

	// Sending may take longer than the interaction window.
	if err := event.DeferCreateMessage(true); err != nil {
		log.WithError(err).Error("Failed to defer response")
		return
	}

	result := b.services.Sweeps.RunGuildSweep(ctx, guildID.String(), b.services.Clock())
	log.WithFields(logrus.Fields{
		"sent":    result.Sent,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Manual birthday announcement finished")

	update := discord.NewMessageUpdateBuilder().SetContent(reply.GuildSweep(result)).Build()
	if _, err := b.client.Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update); err != nil {
		log.WithError(err).Error("Failed to update interaction response")
	}
}

// requireManager checks that the command runs inside a guild and that the
// caller may manage channels there.
func (b *Bot) requireManager(event *events.ApplicationCommandInteractionCreate) (string, bool) {
	guildID := event.GuildID()
	if guildID == nil {
		b.respond(event, reply.GuildOnly, true)
		return "", false
	}
	member := event.Member()
	if member == nil || !member.Permissions.Has(discord.PermissionManageChannels) {
		b.respond(event, reply.NeedManageChannel, true)
		return "", false
	}
	return guildID.String(), true
}

func (b *Bot) respond(event *events.ApplicationCommandInteractionCreate, content string, ephemeral bool) {
	msg := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(ephemeral).
		Build()
	if err := event.CreateMessage(msg); err != nil {
		b.logger.WithError(err).Error("Failed to respond to interaction")
	}
}
