package redisstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
	"birthday_notification_bot/internal/domain/guild"

	"github.com/redis/rueidis"
	"github.com/sirupsen/logrus"
)

const (
	birthdaysKey = "birthday:records" // hash user_id -> YYYY-MM-DD
	guildsKey    = "birthday:guilds"  // hash guild_id -> announcement target
	dateLayout   = "2006-01-02"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the server answers.
func NewClient(ctx context.Context, opts Options) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{opts.Addr},
		Password:     opts.Password,
		SelectDB:     opts.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

// BirthdayRepository keeps every birthday in one hash. HSET on a single
// field is atomic, and ListMatching scans the hash.
type BirthdayRepository struct {
	client rueidis.Client
	logger *logrus.Entry
}

func NewBirthdayRepository(client rueidis.Client, logger *logrus.Entry) *BirthdayRepository {
	return &BirthdayRepository{client: client, logger: logger.WithField("component", "redisstore")}
}

func (r *BirthdayRepository) Upsert(ctx context.Context, b *birthday.Birthday) error {
	cmd := r.client.B().Hset().Key(birthdaysKey).FieldValue().FieldValue(b.UserID, b.Date.Format(dateLayout)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("error upserting birthday: %w", err)
	}
	return nil
}

func (r *BirthdayRepository) Get(ctx context.Context, userID string) (*birthday.Birthday, error) {
	raw, err := r.client.Do(ctx, r.client.B().Hget().Key(birthdaysKey).Field(userID).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, birthday.ErrNotFound
		}
		return nil, fmt.Errorf("error getting birthday: %w", err)
	}
	return decodeBirthday(userID, raw)
}

func (r *BirthdayRepository) ListMatching(ctx context.Context, month time.Month, day int) ([]*birthday.Birthday, error) {
	all, err := r.client.Do(ctx, r.client.B().Hgetall().Key(birthdaysKey).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("error listing birthdays: %w", err)
	}

	out := make([]*birthday.Birthday, 0)
	for userID, raw := range all {
		b, err := decodeBirthday(userID, raw)
		if err != nil {
			// A corrupt field only hides that user's record.
			r.logger.WithError(err).WithField("user_id", userID).Warn("Skipping corrupt birthday record")
			continue
		}
		if b.Date.Month() == month && b.Date.Day() == day {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func decodeBirthday(userID, raw string) (*birthday.Birthday, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt birthday for user %s: %w", userID, err)
	}
	return birthday.New(userID, d.Year(), d.Month(), d.Day()), nil
}

// GuildRepository stores enabled guilds as fields of one hash; disabling
// deletes the field.
type GuildRepository struct {
	client rueidis.Client
}

func NewGuildRepository(client rueidis.Client) *GuildRepository {
	return &GuildRepository{client: client}
}

func (r *GuildRepository) SetTarget(ctx context.Context, guildID, targetID string) error {
	if _, err := guild.NewConfig(guildID, targetID); err != nil {
		return err
	}
	cmd := r.client.B().Hset().Key(guildsKey).FieldValue().FieldValue(guildID, targetID).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("error setting guild announcement channel: %w", err)
	}
	return nil
}

func (r *GuildRepository) ClearTarget(ctx context.Context, guildID string) error {
	if err := r.client.Do(ctx, r.client.B().Hdel().Key(guildsKey).Field(guildID).Build()).Error(); err != nil {
		return fmt.Errorf("error clearing guild config: %w", err)
	}
	return nil
}

func (r *GuildRepository) Get(ctx context.Context, guildID string) (*guild.Config, error) {
	target, err := r.client.Do(ctx, r.client.B().Hget().Key(guildsKey).Field(guildID).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, guild.ErrNotConfigured
		}
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}
	cfg, err := guild.NewConfig(guildID, target)
	if err != nil {
		return nil, fmt.Errorf("corrupt guild config %s: %w", guildID, err)
	}
	return cfg, nil
}

func (r *GuildRepository) ListGuildIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.Do(ctx, r.client.B().Hkeys().Key(guildsKey).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("error listing guild configs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
