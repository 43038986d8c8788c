package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/redis/go-redis/v9"
)

func gamestateKey(id uuid.UUID) string {
	return "gamestate:" + id.String()
}

// SaveGameState stores the session and resets its expiry.
func (r *RedisStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal gamestate", "session_id", id, "error", err)
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}

	if err := r.client.Set(ctx, gamestateKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save gamestate", "session_id", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	data, err := r.client.Get(ctx, gamestateKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Gamestate not found", "session_id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load gamestate", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		r.logger.Error("Failed to unmarshal gamestate", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

// DeleteGameState removes the session. The session lock is left to its
// owner, who is expected to hold it during the delete.
func (r *RedisStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, gamestateKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete gamestate", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}
