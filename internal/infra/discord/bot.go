package discord

import (
	"context"
	"fmt"
	"time"

	"birthday_notification_bot/internal/app"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/sirupsen/logrus"
)

// Bot owns the Discord gateway connection. The core never sees it; it only
// receives the Dispatcher and the GuildTracker.
type Bot struct {
	client   bot.Client
	tracker  *GuildTracker
	services app.Services
	logger   *logrus.Entry
}

// NewBot creates the client without connecting. Call SetServices before Start.
func NewBot(token string, logger *logrus.Entry) (*Bot, error) {
	b := &Bot{
		tracker: NewGuildTracker(),
		logger:  logger.WithField("component", "discord"),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnGuildReady:                    b.tracker.onGuildReady,
			OnGuildJoin:                     b.tracker.onGuildJoin,
			OnGuildLeave:                    b.tracker.onGuildLeave,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord client: %w", err)
	}
	b.client = client
	return b, nil
}

// Dispatcher returns the announcement dispatcher bound to this bot's REST client.
func (b *Bot) Dispatcher() *Dispatcher {
	return NewDispatcher(b.client.Rest())
}

// Guilds is the joined-guild source for the daily sweep.
func (b *Bot) Guilds() *GuildTracker {
	return b.tracker
}

// SetServices wires the app layer. It is separate from NewBot because the
// sweep service needs the dispatcher, which needs the client.
func (b *Bot) SetServices(services app.Services) {
	b.services = services
}

// Start registers the global commands and opens the gateway.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")
	if _, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Opening gateway")
	if err := b.client.OpenGateway(ctx); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// Latency is the last measured gateway heartbeat latency.
func (b *Bot) Latency() time.Duration {
	if gw := b.client.Gateway(); gw != nil {
		return gw.Latency()
	}
	return 0
}

// Status implements the console status report.
func (b *Bot) Status() string {
	return fmt.Sprintf("Transport: discord\nGuilds: %d\nLatency: %dms", b.tracker.Len(), b.Latency().Milliseconds())
}
