package seen

import (
	"context"

	"github.com/redis/go-redis/v9"

	"sjsage522/rafflemonitor/pkg/errors"
)

// RedisStore implements Store as a single redis set
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new redis store holding its urls under key
func NewRedisStore(addr string, db int, key string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client: client,
		key:    key,
	}
}

// Ping checks that the server is reachable
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewStore("redis", "server unreachable", err)
	}
	return nil
}

// Has reports whether url is in the set
func (r *RedisStore) Has(ctx context.Context, url string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, url).Result()
	if err != nil {
		return false, errors.NewStore(url, "redis SISMEMBER failed", err)
	}
	return ok, nil
}

// Add inserts url into the set
func (r *RedisStore) Add(ctx context.Context, url string) error {
	if err := r.client.SAdd(ctx, r.key, url).Err(); err != nil {
		return errors.NewStore(url, "redis SADD failed", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
