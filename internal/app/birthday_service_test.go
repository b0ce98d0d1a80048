package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"birthday_notification_bot/internal/domain/birthday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBirthday(t *testing.T) {
	repo := newFakeBirthdayRepo()
	svc := NewBirthdayService(repo, testLogger)

	rec, err := svc.SetBirthday(context.Background(), "42", "03-15-1990")
	require.NoError(t, err)
	assert.Equal(t, "42", rec.UserID)
	assert.Equal(t, time.March, rec.Date.Month())
	assert.Equal(t, 15, rec.Date.Day())
	assert.Equal(t, 1990, rec.Date.Year())

	stored, err := svc.GetBirthday(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, rec.Date, stored.Date)
}

func TestSetBirthdayReplacesPreviousDate(t *testing.T) {
	repo := newFakeBirthdayRepo()
	svc := NewBirthdayService(repo, testLogger)
	ctx := context.Background()

	_, err := svc.SetBirthday(ctx, "42", "03-15-1990")
	require.NoError(t, err)
	_, err = svc.SetBirthday(ctx, "42", "07-04-1991")
	require.NoError(t, err)

	assert.Len(t, repo.records, 1)
	stored, err := svc.GetBirthday(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "07-04", stored.MonthDay().String())
}

func TestSetBirthdayInvalidDateLeavesStoreUntouched(t *testing.T) {
	repo := newFakeBirthdayRepo(birthday.New("42", 1990, time.March, 15))
	svc := NewBirthdayService(repo, testLogger)

	_, err := svc.SetBirthday(context.Background(), "42", "13-01-2000")
	assert.ErrorIs(t, err, birthday.ErrInvalidDate)
	assert.Zero(t, repo.upserts)

	stored, err := svc.GetBirthday(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "03-15", stored.MonthDay().String())
}

func TestSetBirthdayRejectsPaddedDate(t *testing.T) {
	repo := newFakeBirthdayRepo()
	svc := NewBirthdayService(repo, testLogger)

	for _, raw := range []string{" 03-15-1990", "03-15-1990 ", "\t03-15-1990\n"} {
		_, err := svc.SetBirthday(context.Background(), "42", raw)
		assert.ErrorIs(t, err, birthday.ErrInvalidDate, raw)
	}
	assert.Zero(t, repo.upserts)
}

func TestSetBirthdayEmptyUser(t *testing.T) {
	svc := NewBirthdayService(newFakeBirthdayRepo(), testLogger)
	_, err := svc.SetBirthday(context.Background(), "  ", "03-15-1990")
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestSetBirthdayStoreError(t *testing.T) {
	repo := newFakeBirthdayRepo()
	repo.upsertErr = errors.New("disk full")
	svc := NewBirthdayService(repo, testLogger)

	_, err := svc.SetBirthday(context.Background(), "42", "03-15-1990")
	require.Error(t, err)
	assert.NotErrorIs(t, err, birthday.ErrInvalidDate)
	assert.ErrorIs(t, err, repo.upsertErr)
}

func TestGetBirthdayNotFound(t *testing.T) {
	svc := NewBirthdayService(newFakeBirthdayRepo(), testLogger)
	_, err := svc.GetBirthday(context.Background(), "nobody")
	assert.ErrorIs(t, err, birthday.ErrNotFound)
}
