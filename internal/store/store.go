package store

import (
	"context"
	"errors"
)

// Errors returned by store implementations
var (
	ErrInvalidPath  = errors.New("invalid store path")
	ErrInvalidValue = errors.New("invalid store value")
)

// Handler receives the value at a subscribed path. It is called once with the
// current value when the subscription is created and again after every write
// that changes it. Notifications for one path arrive in write order.
type Handler func(Snapshot)

// Store is a path-addressable record store with change notifications.
//
// Values are trees: nil (absent), bool, int64, string, or map[string]any of
// values. Writing nil or an empty map deletes the path.
type Store interface {
	// Get reads the value at path
	Get(ctx context.Context, path string) (Snapshot, error)

	// Set replaces the value at path
	Set(ctx context.Context, path string, value any) error

	// Update applies several writes atomically. Paths may not overlap.
	// A value of Increment adds to the integer at that path.
	Update(ctx context.Context, updates map[string]any) error

	// Remove deletes the value at path
	Remove(ctx context.Context, path string) error

	// Subscribe registers h for changes at path, its ancestors and descendants
	Subscribe(ctx context.Context, path string, h Handler) (*Subscription, error)
}

// Increment is an Update value that adds By to the integer stored at a path,
// treating a missing value as zero
type Increment struct {
	By int64
}

// IncrementBy returns an Increment update value
func IncrementBy(n int64) Increment {
	return Increment{By: n}
}
