package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"birthday_notification_bot/internal/domain/guild"
)

// SQLGuildRepository stores one row per enabled guild. Disabling deletes the row.
type SQLGuildRepository struct {
	db *DB
}

func NewSQLGuildRepository(db *DB) *SQLGuildRepository {
	return &SQLGuildRepository{db: db}
}

func (r *SQLGuildRepository) SetTarget(ctx context.Context, guildID, targetID string) error {
	query := `INSERT INTO guild_configs (guild_id, announcement_channel_id, updated_at)
               VALUES ($1, $2, CURRENT_TIMESTAMP)
               ON CONFLICT (guild_id) DO UPDATE
               SET announcement_channel_id = excluded.announcement_channel_id,
                   updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, r.db.rebind(query), guildID, targetID); err != nil {
		return fmt.Errorf("error setting guild announcement channel: %w", err)
	}
	return nil
}

func (r *SQLGuildRepository) ClearTarget(ctx context.Context, guildID string) error {
	query := `DELETE FROM guild_configs WHERE guild_id = $1`
	if _, err := r.db.ExecContext(ctx, r.db.rebind(query), guildID); err != nil {
		return fmt.Errorf("error clearing guild config: %w", err)
	}
	return nil
}

func (r *SQLGuildRepository) Get(ctx context.Context, guildID string) (*guild.Config, error) {
	query := `SELECT announcement_channel_id FROM guild_configs WHERE guild_id = $1`
	var targetID string
	err := r.db.QueryRowContext(ctx, r.db.rebind(query), guildID).Scan(&targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, guild.ErrNotConfigured
		}
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}
	cfg, err := guild.NewConfig(guildID, targetID)
	if err != nil {
		return nil, fmt.Errorf("corrupt guild config %s: %w", guildID, err)
	}
	return cfg, nil
}

func (r *SQLGuildRepository) ListGuildIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT guild_id FROM guild_configs ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing guild configs: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning guild id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guild ids: %w", err)
	}
	return ids, nil
}
