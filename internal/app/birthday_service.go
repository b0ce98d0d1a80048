package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"birthday_notification_bot/internal/domain/birthday"

	"github.com/sirupsen/logrus"
)

var ErrEmptyUserID = errors.New("user id must not be empty")

// BirthdayService handles user date records.
type BirthdayService struct {
	repo   birthday.Repository
	locks  *KeyedMutex
	logger *logrus.Entry
}

func NewBirthdayService(repo birthday.Repository, logger *logrus.Entry) *BirthdayService {
	return &BirthdayService{
		repo:   repo,
		locks:  NewKeyedMutex(),
		logger: logger.WithField("component", "birthday_service"),
	}
}

// SetBirthday parses raw (MM-DD-YYYY) and stores it as the user's only birthday.
// A malformed date returns an error wrapping birthday.ErrInvalidDate and
// leaves the store untouched.
func (s *BirthdayService) SetBirthday(ctx context.Context, userID string, raw string) (*birthday.Birthday, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	date, err := birthday.ParseDate(raw)
	if err != nil {
		return nil, err
	}

	rec := birthday.New(userID, date.Year(), date.Month(), date.Day())

	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to store birthday")
		return nil, fmt.Errorf("failed to store birthday for user %s: %w", userID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"month_day": rec.MonthDay().String(),
	}).Info("Birthday stored")
	return rec, nil
}

// GetBirthday returns birthday.ErrNotFound when the user never set a date.
func (s *BirthdayService) GetBirthday(ctx context.Context, userID string) (*birthday.Birthday, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, birthday.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get birthday for user %s: %w", userID, err)
	}
	return rec, nil
}
