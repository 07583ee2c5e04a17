package auth

import (
	"context"
	"errors"
	"time"

	"eventreward/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the id of the one refresh token each user may redeem.
type SessionStore interface {
	Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error
	// Rotate swaps oldID for newID. It reports false when oldID is no longer current.
	Rotate(ctx context.Context, userID, oldID, newID string, ttl time.Duration) (bool, error)
}

var rotateScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0
`)

type redisSessionStore struct {
	rdb redis.UniversalClient
}

func NewRedisSessionStore(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (s *redisSessionStore) Save(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, rediskey.BuildRefreshSessionKey(userID), tokenID, ttl).Err()
}

func (s *redisSessionStore) Rotate(ctx context.Context, userID, oldID, newID string, ttl time.Duration) (bool, error) {
	key := rediskey.BuildRefreshSessionKey(userID)
	n, err := rotateScript.Run(ctx, s.rdb, []string{key}, oldID, newID, ttl.Milliseconds()).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
