package announcement

import (
	"context"
	"errors"
)

var (
	// ErrTargetNotFound means the configured destination can no longer be
	// resolved inside the guild. The configuration is left as is.
	ErrTargetNotFound = errors.New("announcement target not found")
	// ErrTransport covers any network or platform failure while sending.
	ErrTransport = errors.New("announcement transport failure")
)

// Dispatcher sends a single birthday announcement for userID to targetID.
// It makes one attempt; the deadline comes from ctx.
type Dispatcher interface {
	Announce(ctx context.Context, guildID, targetID, userID string) error
}
