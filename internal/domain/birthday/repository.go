package birthday

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("birthday not found")

// Repository defines the operations for persisting and retrieving Birthday records.
type Repository interface {
	Upsert(ctx context.Context, b *Birthday) error // Replaces any existing date for b.UserID
	Get(ctx context.Context, userID string) (*Birthday, error)
	ListMatching(ctx context.Context, month time.Month, day int) ([]*Birthday, error)
}
