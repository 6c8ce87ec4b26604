package repository

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"
	approvaldomain "github.com/smallbiznis/consultinvoice/internal/approval/domain"
)

const DefaultRedisPrefix = "consultinvoice:kv:"

type RedisKV struct {
	client redis.Cmdable
	prefix string
}

func NewRedisKV(client redis.Cmdable, prefix string) *RedisKV {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisKV{client: client, prefix: prefix}
}

var _ approvaldomain.KV = (*RedisKV)(nil)

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores without expiry; decisions outlive any cache window.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
