package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OTPTTL      = 300 * time.Second
	CooldownTTL = 30 * time.Second
	ResetTTL    = 300 * time.Second
)

func OTPKey(email string) string      { return "otp:" + email }
func CooldownKey(email string) string { return "cooldown:" + email }
func ResetKey(email string) string    { return "reset:" + email }
func SessionKey(userID string) string { return "user:" + userID }

// Store is a thin get/set-with-expiry/delete adapter over Redis.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get returns the value at key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Incr increments a counter and starts its expiry on the first hit.
// It returns the new count and the time left in the window.
func (s *Store) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("cache incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("cache expire %s: %w", key, err)
		}
	}
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("cache ttl %s: %w", key, err)
	}
	return n, ttl, nil
}
