package history

import (
	"context"
	"time"
)

// Repository persists analysis outcomes
type Repository interface {
	// Insert appends one analysis outcome
	Insert(ctx context.Context, entry *Entry) error
	// RecentSince returns all entries analyzed at or after the cutoff,
	// newest first
	RecentSince(ctx context.Context, cutoff time.Time) ([]Entry, error)
}
