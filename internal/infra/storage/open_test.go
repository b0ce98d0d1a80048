package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"
	"birthday_notification_bot/internal/infra/config"
	"birthday_notification_bot/internal/infra/logger"
	"birthday_notification_bot/internal/infra/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh config per supported driver. Postgres needs a
// live server and is not part of this suite.
func backends(t *testing.T) map[string]func() *config.AppConfig {
	t.Helper()
	return map[string]func() *config.AppConfig{
		config.StorageDriverMemory: func() *config.AppConfig {
			return &config.AppConfig{StorageDriver: config.StorageDriverMemory}
		},
		config.StorageDriverFile: func() *config.AppConfig {
			return &config.AppConfig{
				StorageDriver: config.StorageDriverFile,
				StoragePath:   filepath.Join(t.TempDir(), "birthdays.json"),
			}
		},
		config.StorageDriverSQLite: func() *config.AppConfig {
			return &config.AppConfig{
				StorageDriver: config.StorageDriverSQLite,
				StoragePath:   filepath.Join(t.TempDir(), "birthdays.db"),
			}
		},
		config.StorageDriverRedis: func() *config.AppConfig {
			mr := miniredis.RunT(t)
			return &config.AppConfig{
				StorageDriver: config.StorageDriverRedis,
				RedisAddr:     mr.Addr(),
			}
		},
	}
}

func openStore(t *testing.T, cfg *config.AppConfig) *storage.Store {
	t.Helper()
	st, err := storage.Open(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestBirthdayRepositoryContract(t *testing.T) {
	for name, newConfig := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := openStore(t, newConfig())
			ctx := context.Background()

			_, err := st.Birthdays.Get(ctx, "42")
			assert.ErrorIs(t, err, birthday.ErrNotFound)

			require.NoError(t, st.Birthdays.Upsert(ctx, birthday.New("42", 2000, time.March, 15)))
			require.NoError(t, st.Birthdays.Upsert(ctx, birthday.New("7", 1995, time.March, 15)))
			require.NoError(t, st.Birthdays.Upsert(ctx, birthday.New("9", 1980, time.March, 16)))

			got, err := st.Birthdays.Get(ctx, "42")
			require.NoError(t, err)
			assert.Equal(t, "42", got.UserID)
			assert.True(t, got.Date.Equal(time.Date(2000, time.March, 15, 0, 0, 0, 0, time.UTC)))

			matches, err := st.Birthdays.ListMatching(ctx, time.March, 15)
			require.NoError(t, err)
			require.Len(t, matches, 2)
			assert.Equal(t, "42", matches[0].UserID)
			assert.Equal(t, "7", matches[1].UserID)

			// Upsert replaces; a user never has two records.
			require.NoError(t, st.Birthdays.Upsert(ctx, birthday.New("42", 2000, time.March, 16)))
			matches, err = st.Birthdays.ListMatching(ctx, time.March, 15)
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "7", matches[0].UserID)

			matches, err = st.Birthdays.ListMatching(ctx, time.March, 16)
			require.NoError(t, err)
			assert.Len(t, matches, 2)

			matches, err = st.Birthdays.ListMatching(ctx, time.December, 25)
			require.NoError(t, err)
			assert.Empty(t, matches)
		})
	}
}

func TestGuildRepositoryContract(t *testing.T) {
	for name, newConfig := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := openStore(t, newConfig())
			ctx := context.Background()

			_, err := st.Guilds.Get(ctx, "g1")
			assert.ErrorIs(t, err, guild.ErrNotConfigured)

			require.NoError(t, st.Guilds.SetTarget(ctx, "g1", "chan-1"))
			require.NoError(t, st.Guilds.SetTarget(ctx, "g2", "chan-2"))
			require.NoError(t, st.Guilds.SetTarget(ctx, "g1", "chan-9"))

			cfg, err := st.Guilds.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, "g1", cfg.GuildID())
			assert.Equal(t, "chan-9", cfg.TargetID())

			ids, err := st.Guilds.ListGuildIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"g1", "g2"}, ids)

			require.NoError(t, st.Guilds.ClearTarget(ctx, "g1"))
			require.NoError(t, st.Guilds.ClearTarget(ctx, "g1"), "clearing twice is not an error")
			_, err = st.Guilds.Get(ctx, "g1")
			assert.ErrorIs(t, err, guild.ErrNotConfigured)

			ids, err = st.Guilds.ListGuildIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"g2"}, ids)
		})
	}
}

func TestPersistentBackendsSurviveRestart(t *testing.T) {
	cases := map[string]*config.AppConfig{
		config.StorageDriverFile: {
			StorageDriver: config.StorageDriverFile,
			StoragePath:   filepath.Join(t.TempDir(), "birthdays.json"),
		},
		config.StorageDriverSQLite: {
			StorageDriver: config.StorageDriverSQLite,
			StoragePath:   filepath.Join(t.TempDir(), "birthdays.db"),
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := storage.Open(ctx, cfg, logger.Discard())
			require.NoError(t, err)
			require.NoError(t, first.Birthdays.Upsert(ctx, birthday.New("42", 2000, time.March, 15)))
			require.NoError(t, first.Guilds.SetTarget(ctx, "g1", "chan-1"))
			require.NoError(t, first.Close())

			second := openStore(t, cfg)
			got, err := second.Birthdays.Get(ctx, "42")
			require.NoError(t, err)
			assert.Equal(t, "03-15", got.MonthDay().String())
			assert.Equal(t, 2000, got.Date.Year())

			gc, err := second.Guilds.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, "chan-1", gc.TargetID())
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), &config.AppConfig{StorageDriver: "etcd"}, logger.Discard())
	assert.Error(t, err)
}

func TestOpenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := storage.Open(ctx, &config.AppConfig{StorageDriver: config.StorageDriverRedis, RedisAddr: addr}, logger.Discard())
	assert.Error(t, err)
}
