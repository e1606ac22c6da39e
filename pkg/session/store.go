package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID uuid.UUID) string { return "session:" + sessionID.String() }

// Store keeps live session ids in Redis. Deleting the key revokes every
// token carrying that session id.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, redisKeySession(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Active reports whether the session exists and belongs to userID.
func (s *Store) Active(ctx context.Context, sessionID, userID uuid.UUID) (bool, error) {
	owner, err := s.rdb.Get(ctx, redisKeySession(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get session: %w", err)
	}
	return owner == userID.String(), nil
}

// Revoke is idempotent.
func (s *Store) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.rdb.Del(ctx, redisKeySession(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
