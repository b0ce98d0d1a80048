package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birthday_notification_bot/internal/app"
	"birthday_notification_bot/internal/domain/announcement"
	"birthday_notification_bot/internal/infra/config"
	"birthday_notification_bot/internal/infra/console"
	"birthday_notification_bot/internal/infra/discord"
	"birthday_notification_bot/internal/infra/logger"
	"birthday_notification_bot/internal/infra/reply"
	"birthday_notification_bot/internal/infra/scheduler"
	"birthday_notification_bot/internal/infra/storage"
	"birthday_notification_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepTimeout    = 30 * time.Minute
)

func main() {
	cmd := &cli.Command{
		Name:  "birthday-bot",
		Usage: "Announce member birthdays in Discord servers or Telegram groups",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Path to a .env file with the bot configuration",
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Start the bot, the daily scheduler and the console (default)",
				Action: runBot,
			},
			{
				Name:  "sweep",
				Usage: "Run the birthday sweep once and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "guild",
						Usage: "Only sweep this guild or group id",
					},
				},
				Action: runSweep,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Log.WithError(err).Fatal("Birthday bot stopped with an error")
	}
}

// setup loads configuration, initializes logging and opens the storage
// backend. A storage failure aborts startup.
func setup(ctx context.Context, cmd *cli.Command) (*config.AppConfig, *storage.Store, *logrus.Entry, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"transport":   cfg.Transport,
		"storage":     cfg.StorageDriver,
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	store, err := storage.Open(ctx, cfg, logger.Component("storage"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not open %s storage: %w", cfg.StorageDriver, err)
	}
	mainLogger.WithField("driver", store.Driver).Info("Storage initialized")
	return cfg, store, mainLogger, nil
}

func runBot(ctx context.Context, cmd *cli.Command) error {
	cfg, store, mainLogger, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			mainLogger.WithError(err).Warn("Failed to close storage")
		}
	}()

	base := logrus.NewEntry(logger.Log)
	locks := app.NewKeyedMutex() // Shared by guild config changes and sweeps
	birthdayService := app.NewBirthdayService(store.Birthdays, base)
	guildService := app.NewGuildService(store.Guilds, locks, base)

	var (
		dispatcher announcement.Dispatcher
		lister     app.GuildLister
		status     console.StatusReporter
		wire       func(app.Services)
		start      func(context.Context) error
		stop       func()
	)
	switch cfg.Transport {
	case config.TransportDiscord:
		b, err := discord.NewBot(cfg.DiscordToken, base)
		if err != nil {
			return err
		}
		dispatcher, lister, status, wire = b.Dispatcher(), b.Guilds(), b, b.SetServices
		start = b.Start
		stop = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			b.Close(closeCtx)
		}
	case config.TransportTelegram:
		b, err := telegram.NewBot(cfg.TelegramToken, cfg.DispatchTimeout, base)
		if err != nil {
			return err
		}
		// Telegram cannot enumerate the groups a bot is in.
		dispatcher, lister, status, wire = b.Dispatcher(), app.GuildListerFunc(guildService.ConfiguredGuilds), b, b.SetServices
		start = func(context.Context) error {
			go b.Start()
			return nil
		}
		stop = b.Stop
	}

	announcer := app.NewAnnouncer(dispatcher, cfg.DispatchTimeout, base)
	sweepService := app.NewSweepService(store.Birthdays, store.Guilds, announcer, locks, cfg.SweepConcurrency, base)
	wire(app.Services{
		Birthdays: birthdayService,
		Guilds:    guildService,
		Sweeps:    sweepService,
		Clock:     cfg.Now,
	})

	birthdayScheduler := scheduler.NewBirthdayScheduler(sweepService, lister, cfg.Location, cfg.CronSpecDaily, sweepTimeout, base)
	if err := birthdayScheduler.Start(); err != nil {
		return err
	}
	defer birthdayScheduler.Stop()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := start(ctx); err != nil {
		return err
	}
	defer stop()
	mainLogger.Info("Application setup complete. Bot and scheduler are running.")

	if cfg.ConsoleEnabled {
		report := console.StatusFunc(func() string {
			return fmt.Sprintf("%s\nStorage: %s", status.Status(), store.Driver)
		})
		cons := console.New(os.Stdin, os.Stdout, birthdayScheduler, report, base)
		go func() {
			if err := cons.Run(ctx); err != nil {
				if !errors.Is(err, console.ErrQuit) {
					mainLogger.WithError(err).Error("Console stopped")
					return
				}
				cancel()
			}
		}()
	}

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")
	return nil
}

// runSweep performs a single sweep without opening a gateway or poller.
func runSweep(ctx context.Context, cmd *cli.Command) error {
	cfg, store, mainLogger, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			mainLogger.WithError(err).Warn("Failed to close storage")
		}
	}()

	base := logrus.NewEntry(logger.Log)
	locks := app.NewKeyedMutex()
	guildService := app.NewGuildService(store.Guilds, locks, base)

	var dispatcher announcement.Dispatcher
	switch cfg.Transport {
	case config.TransportDiscord:
		// REST only; the gateway is never opened.
		b, err := discord.NewBot(cfg.DiscordToken, base)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())
		dispatcher = b.Dispatcher()
	case config.TransportTelegram:
		b, err := telegram.NewBot(cfg.TelegramToken, cfg.DispatchTimeout, base)
		if err != nil {
			return err
		}
		dispatcher = b.Dispatcher()
	}

	var lister app.GuildLister = app.GuildListerFunc(guildService.ConfiguredGuilds)
	if guildID := cmd.String("guild"); guildID != "" {
		lister = app.GuildListerFunc(func(context.Context) ([]string, error) {
			return []string{guildID}, nil
		})
	}

	announcer := app.NewAnnouncer(dispatcher, cfg.DispatchTimeout, base)
	sweepService := app.NewSweepService(store.Birthdays, store.Guilds, announcer, locks, cfg.SweepConcurrency, base)
	results, err := sweepService.RunDailySweep(ctx, cfg.Now, lister)
	if err != nil {
		return err
	}
	fmt.Println(reply.DailySweep(results))

	if _, _, failed := app.SweepTotals(results); failed > 0 {
		return fmt.Errorf("%d birthday announcement(s) failed", failed)
	}
	return nil
}
