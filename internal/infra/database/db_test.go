package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"birthday_notification_bot/internal/domain/birthday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	sqlite := &DB{dialect: DialectSQLite}
	postgres := &DB{dialect: DialectPostgres}
	query := `SELECT a FROM t WHERE b = $1 AND c = $2 AND d = $10 AND e = '$'`

	assert.Equal(t, `SELECT a FROM t WHERE b = ? AND c = ? AND d = ? AND e = '$'`, sqlite.rebind(query))
	assert.Equal(t, query, postgres.rebind(query))
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "postgres", DialectPostgres.String())
	assert.Equal(t, "sqlite", DialectSQLite.String())
}

func TestSQLiteMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "birthdays.db")

	db, err := NewSQLiteConnection(path)
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, db.Dialect())
	require.NoError(t, db.migrate(context.Background()))
	require.NoError(t, db.Close())

	db, err = NewSQLiteConnection(path)
	require.NoError(t, err)
	defer db.Close()
}

func TestSQLiteRejectsInvalidRows(t *testing.T) {
	db, err := NewSQLiteConnection(filepath.Join(t.TempDir(), "birthdays.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = db.ExecContext(ctx, `INSERT INTO guild_configs (guild_id, announcement_channel_id) VALUES ('g1', '')`)
	assert.Error(t, err, "empty announcement target must be rejected")

	repo := NewSQLBirthdayRepository(db)
	require.NoError(t, repo.Upsert(ctx, birthday.New("42", 2000, time.February, 29)))
	got, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "02-29", got.MonthDay().String())
}

func TestNewSQLiteConnectionRequiresPath(t *testing.T) {
	_, err := NewSQLiteConnection(" ")
	assert.Error(t, err)
}
