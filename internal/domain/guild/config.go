package guild

import (
	"errors"
	"strings"
)

var ErrNotConfigured = errors.New("guild has no announcement configuration")
var ErrEmptyTarget = errors.New("announcement target must not be empty")

// Config is the announcement configuration of a guild. A stored Config is
// the enabled state; a guild without one is disabled.
type Config struct {
	guildID  string
	targetID string
}

// NewConfig is the only way to build a usable Config.
func NewConfig(guildID, targetID string) (*Config, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, ErrEmptyTarget
	}
	return &Config{guildID: guildID, targetID: targetID}, nil
}

func (c *Config) GuildID() string  { return c.guildID }
func (c *Config) TargetID() string { return c.targetID }

// Enabled is false only for the zero Config.
func (c *Config) Enabled() bool {
	return c != nil && c.targetID != ""
}
