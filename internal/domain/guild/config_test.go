package guild_test

import (
	"testing"

	"birthday_notification_bot/internal/domain/guild"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := guild.NewConfig("g1", "  chan-1 ")
	require.NoError(t, err)
	assert.Equal(t, "g1", cfg.GuildID())
	assert.Equal(t, "chan-1", cfg.TargetID())
	assert.True(t, cfg.Enabled())
}

func TestNewConfigRejectsEmptyTarget(t *testing.T) {
	for _, target := range []string{"", "   "} {
		_, err := guild.NewConfig("g1", target)
		assert.ErrorIs(t, err, guild.ErrEmptyTarget)
	}
}

func TestEnabledOnNilAndZeroConfig(t *testing.T) {
	var nilCfg *guild.Config
	assert.False(t, nilCfg.Enabled())
	assert.False(t, (&guild.Config{}).Enabled())
}
