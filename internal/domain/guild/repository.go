package guild

import "context"

// Repository persists guild announcement configuration.
// Implementations must keep the rule "a config row exists iff the guild is enabled".
type Repository interface {
	SetTarget(ctx context.Context, guildID, targetID string) error
	ClearTarget(ctx context.Context, guildID string) error
	Get(ctx context.Context, guildID string) (*Config, error) // ErrNotConfigured when absent
	ListGuildIDs(ctx context.Context) ([]string, error)
}
