package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"agrosense-backend/internal/config"
	"agrosense-backend/internal/repository"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const sessionKeyPrefix = "session:expiry:"

// SessionStore keeps per-user token expiry in Redis. The key TTL mirrors the
// token lifetime, so expired sessions vanish on their own.
type SessionStore struct {
	client *redis.Client
}

// New creates a Redis-backed session store
func New(cfg config.RedisConfig) *SessionStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &SessionStore{client: client}
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) Close() error {
	return s.client.Close()
}

func (s *SessionStore) Set(ctx context.Context, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return repository.ErrInvalidInput
	}
	err := s.client.Set(ctx, sessionKeyPrefix+userID, expiresAt.Unix(), ttl).Err()
	if err != nil {
		return err
	}
	nuts.L.Debugf("[SessionStore] Session for user %s expires at %s", userID, expiresAt.UTC().Format(time.RFC3339))
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (time.Time, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, repository.ErrNotFound
		}
		return time.Time{}, err
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt session value for user %s: %w", userID, err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// Extend refreshes the session to now+window. The session must still be
// live; extending a missing session reports not-found.
func (s *SessionStore) Extend(ctx context.Context, userID string, window time.Duration) (time.Time, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return time.Time{}, err
	}
	expiresAt := time.Now().UTC().Add(window)
	if err := s.Set(ctx, userID, expiresAt); err != nil {
		return time.Time{}, err
	}
	return expiresAt, nil
}
