package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"birthday_notification_bot/internal/domain/guild"

	"github.com/sirupsen/logrus"
)

var ErrEmptyGuildID = errors.New("guild id must not be empty")

// GuildService owns the enable/disable state of guild announcements.
// Mutations for one guild are serialized with sweeps of the same guild.
type GuildService struct {
	repo   guild.Repository
	locks  *KeyedMutex
	logger *logrus.Entry
}

// NewGuildService shares locks with the SweepService so that a disable
// never interleaves with an in-flight sweep of that guild.
func NewGuildService(repo guild.Repository, locks *KeyedMutex, logger *logrus.Entry) *GuildService {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &GuildService{
		repo:   repo,
		locks:  locks,
		logger: logger.WithField("component", "guild_service"),
	}
}

// SetAnnouncementChannel enables announcements for guildID, or moves them to
// a new target when already enabled.
func (s *GuildService) SetAnnouncementChannel(ctx context.Context, guildID, targetID string) error {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return ErrEmptyGuildID
	}
	cfg, err := guild.NewConfig(guildID, targetID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(guildID)
	defer unlock()

	if err := s.repo.SetTarget(ctx, cfg.GuildID(), cfg.TargetID()); err != nil {
		s.logger.WithError(err).WithField("guild_id", guildID).Error("Failed to set announcement channel")
		return fmt.Errorf("failed to set announcement channel for guild %s: %w", guildID, err)
	}
	s.logger.WithFields(logrus.Fields{"guild_id": guildID, "target_id": cfg.TargetID()}).Info("Announcement channel set")
	return nil
}

// Disable removes the guild configuration. alreadyDisabled is true when
// there was nothing to remove; in that case the store is not written.
func (s *GuildService) Disable(ctx context.Context, guildID string) (alreadyDisabled bool, err error) {
	guildID = strings.TrimSpace(guildID)
	if guildID == "" {
		return false, ErrEmptyGuildID
	}

	unlock := s.locks.Lock(guildID)
	defer unlock()

	cfg, err := s.repo.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, guild.ErrNotConfigured) {
			s.logger.WithField("guild_id", guildID).Info("Announcements already disabled")
			return true, nil
		}
		return false, fmt.Errorf("failed to read guild config %s: %w", guildID, err)
	}
	if !cfg.Enabled() {
		return true, nil
	}

	if err := s.repo.ClearTarget(ctx, guildID); err != nil {
		s.logger.WithError(err).WithField("guild_id", guildID).Error("Failed to disable announcements")
		return false, fmt.Errorf("failed to disable announcements for guild %s: %w", guildID, err)
	}
	s.logger.WithField("guild_id", guildID).Info("Announcements disabled")
	return false, nil
}

// Get returns guild.ErrNotConfigured for disabled guilds.
func (s *GuildService) Get(ctx context.Context, guildID string) (*guild.Config, error) {
	return s.repo.Get(ctx, guildID)
}

// ConfiguredGuilds lists every guild that currently has announcements enabled.
func (s *GuildService) ConfiguredGuilds(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListGuildIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configured guilds: %w", err)
	}
	return ids, nil
}
