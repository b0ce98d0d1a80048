package app

import (
	"context"
	"testing"

	"birthday_notification_bot/internal/domain/guild"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAnnouncementChannel(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g1", "chan-1"))
	cfg, err := svc.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", cfg.TargetID())

	// Re-targeting replaces the previous channel.
	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g1", "chan-2"))
	cfg, err = svc.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "chan-2", cfg.TargetID())
}

func TestSetAnnouncementChannelValidation(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)

	assert.ErrorIs(t, svc.SetAnnouncementChannel(context.Background(), "g1", " "), guild.ErrEmptyTarget)
	assert.ErrorIs(t, svc.SetAnnouncementChannel(context.Background(), "", "chan-1"), ErrEmptyGuildID)
	assert.Zero(t, repo.writes)
}

func TestDisable(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g1", "chan-1"))

	alreadyDisabled, err := svc.Disable(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, alreadyDisabled)

	_, err = svc.Get(ctx, "g1")
	assert.ErrorIs(t, err, guild.ErrNotConfigured)
}

func TestDisableTwiceDoesNotWrite(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g1", "chan-1"))
	_, err := svc.Disable(ctx, "g1")
	require.NoError(t, err)
	writes := repo.writes

	alreadyDisabled, err := svc.Disable(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, alreadyDisabled)
	assert.Equal(t, writes, repo.writes)
}

func TestDisableNeverConfigured(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)

	alreadyDisabled, err := svc.Disable(context.Background(), "g9")
	require.NoError(t, err)
	assert.True(t, alreadyDisabled)
	assert.Zero(t, repo.writes)
}

func TestConfiguredGuilds(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g2", "c"))
	require.NoError(t, svc.SetAnnouncementChannel(ctx, "g1", "c"))
	_, err := svc.Disable(ctx, "g2")
	require.NoError(t, err)

	ids, err := svc.ConfiguredGuilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, ids)
}
