package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/magabrotheeeer/connect-bot/internal/cache"
)

const keyPrefix = "connectbot:session:"

// Redis хранит сессии в Redis в виде JSON со временем жизни ttl.
type Redis struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedis создаёт хранилище поверх подключения к Redis.
func NewRedis(c *cache.Cache, ttl time.Duration) *Redis {
	return &Redis{cache: c, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, userID int64) (*Session, error) {
	const op = "session.Redis.Get"
	s := New(userID)
	found, err := r.cache.Get(ctx, key(userID), s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return New(userID), nil
	}
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	return s, nil
}

func (r *Redis) Save(ctx context.Context, s *Session) error {
	const op = "session.Redis.Save"
	if err := r.cache.Set(ctx, key(s.UserID), s, r.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, userID int64) error {
	const op = "session.Redis.Clear"
	if err := r.cache.Invalidate(ctx, key(userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}
