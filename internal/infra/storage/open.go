// Package storage selects the persistence backend for birthdays and guild
// configuration. All backends satisfy the same two repository interfaces.
package storage

import (
	"context"
	"fmt"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"
	"birthday_notification_bot/internal/infra/config"
	"birthday_notification_bot/internal/infra/database"
	"birthday_notification_bot/internal/infra/memstore"
	"birthday_notification_bot/internal/infra/redisstore"

	"github.com/sirupsen/logrus"
)

// Store bundles the repositories of one backend.
type Store struct {
	Driver    string
	Birthdays birthday.Repository
	Guilds    guild.Repository

	closeFn func() error
}

func (s *Store) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Open initializes the configured backend. Any error means the backend is
// unusable and the caller must not start on empty state.
func Open(ctx context.Context, cfg *config.AppConfig, logger *logrus.Entry) (*Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlStore(cfg.StorageDriver, db), nil
	case config.StorageDriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return sqlStore(cfg.StorageDriver, db), nil
	case config.StorageDriverFile:
		st, err := memstore.Open(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: cfg.StorageDriver, Birthdays: st, Guilds: st.Guilds()}, nil
	case config.StorageDriverMemory:
		st := memstore.New()
		return &Store{Driver: cfg.StorageDriver, Birthdays: st, Guilds: st.Guilds()}, nil
	case config.StorageDriverRedis:
		client, err := redisstore.NewClient(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:    cfg.StorageDriver,
			Birthdays: redisstore.NewBirthdayRepository(client, logger),
			Guilds:    redisstore.NewGuildRepository(client),
			closeFn: func() error {
				client.Close()
				return nil
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

func sqlStore(driver string, db *database.DB) *Store {
	return &Store{
		Driver:    driver,
		Birthdays: database.NewSQLBirthdayRepository(db),
		Guilds:    database.NewSQLGuildRepository(db),
		closeFn:   db.Close,
	}
}
