package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a KVStore backed by a Redis server. Strings map to plain keys,
// lists to Redis lists. Nothing expires: this is the durable side of a session.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the given Redis server. prefix namespaces every key.
func NewRedis(addr, username, password string, db int, prefix string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis) Append(ctx context.Context, key, value string) error {
	return r.client.RPush(ctx, r.key(key), value).Err()
}

func (r *Redis) List(ctx context.Context, key string) ([]string, error) {
	return r.client.LRange(ctx, r.key(key), 0, -1).Result()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
