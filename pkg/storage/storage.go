package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/state"
)

// DefaultLockTTL bounds how long a session lock survives a crashed holder.
// Locks are held for single transitions, never across a generation.
const DefaultLockTTL = 30 * time.Second

// Storage defines the session persistence operations
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations. LoadGameState returns nil, nil for an unknown
	// or expired session.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// Session locks serialise work on one session. AcquireLock returns
	// false when another owner holds the lock. ReleaseLock only releases a
	// lock held by owner.
	AcquireLock(ctx context.Context, id uuid.UUID, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, id uuid.UUID, owner string) error
}
