package revalidate

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/threads/shared/domain"
	"github.com/redis/go-redis/v9"
)

// Redis stores the last revalidation time per path and publishes a Signal on RedisChannel.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client), nil
}

func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

func key(path domain.Path) string {
	return RedisKeyPrefix + path
}

func (r *Redis) Revalidate(ctx context.Context, path domain.Path) error {
	at := r.now()
	msg, err := encode(path, at)
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}

	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(path), at.UTC().Format(time.RFC3339Nano), 0)
		pipe.Publish(ctx, RedisChannel, msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revalidate %q: %w", path, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
