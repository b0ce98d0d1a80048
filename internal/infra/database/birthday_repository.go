package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"birthday_notification_bot/internal/domain/birthday"
)

type SQLBirthdayRepository struct {
	db *DB
}

func NewSQLBirthdayRepository(db *DB) *SQLBirthdayRepository {
	return &SQLBirthdayRepository{db: db}
}

func (r *SQLBirthdayRepository) Upsert(ctx context.Context, b *birthday.Birthday) error {
	query := `INSERT INTO birthdays (user_id, birth_year, birth_month, birth_day, updated_at)
               VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
               ON CONFLICT (user_id) DO UPDATE
               SET birth_year = excluded.birth_year,
                   birth_month = excluded.birth_month,
                   birth_day = excluded.birth_day,
                   updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, r.db.rebind(query), b.UserID, b.Date.Year(), int(b.Date.Month()), b.Date.Day())
	if err != nil {
		return fmt.Errorf("error upserting birthday: %w", err)
	}
	return nil
}

func (r *SQLBirthdayRepository) Get(ctx context.Context, userID string) (*birthday.Birthday, error) {
	query := `SELECT user_id, birth_year, birth_month, birth_day
               FROM birthdays WHERE user_id = $1`
	b, err := scanBirthday(r.db.QueryRowContext(ctx, r.db.rebind(query), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, birthday.ErrNotFound
		}
		return nil, fmt.Errorf("error getting birthday by user ID: %w", err)
	}
	return b, nil
}

func (r *SQLBirthdayRepository) ListMatching(ctx context.Context, month time.Month, day int) ([]*birthday.Birthday, error) {
	query := `SELECT user_id, birth_year, birth_month, birth_day
               FROM birthdays
               WHERE birth_month = $1 AND birth_day = $2
               ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), int(month), day)
	if err != nil {
		return nil, fmt.Errorf("error listing birthdays for %02d-%02d: %w", int(month), day, err)
	}
	defer rows.Close()

	birthdays := make([]*birthday.Birthday, 0)
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning birthday row: %w", err)
		}
		birthdays = append(birthdays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthday rows: %w", err)
	}
	return birthdays, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBirthday(row rowScanner) (*birthday.Birthday, error) {
	var (
		userID           string
		year, month, day int
	)
	if err := row.Scan(&userID, &year, &month, &day); err != nil {
		return nil, err
	}
	return birthday.New(userID, year, time.Month(month), day), nil
}
