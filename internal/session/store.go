package session

import (
	"context"

	"github.com/google/uuid"
)

// Store keeps one value per browser session.
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	NewID() string
}

// Sweeper is implemented by stores that must drop expired entries
// themselves. Redis expires keys on its own and does not need it.
type Sweeper interface {
	Sweep() int
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}
