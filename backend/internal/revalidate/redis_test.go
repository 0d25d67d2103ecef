package revalidate

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, s
}

func TestNewRedis(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		_, err := NewRedis(context.Background(), "not a url")
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		s := miniredis.RunT(t)
		addr := s.Addr()
		s.Close()

		_, err := NewRedis(context.Background(), "redis://"+addr)
		assert.Error(t, err)
	})
}

func TestRedisRevalidate(t *testing.T) {
	ctx := context.Background()
	r, s := setupTestRedis(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return at }

	sub := redis.NewClient(&redis.Options{Addr: s.Addr()}).Subscribe(ctx, RedisChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, r.Revalidate(ctx, "/thread/abc"))

	stored, err := s.Get(RedisKeyPrefix + "/thread/abc")
	require.NoError(t, err)
	assert.Equal(t, at.Format(time.RFC3339Nano), stored)

	select {
	case msg := <-sub.Channel():
		var signal Signal
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &signal))
		assert.Equal(t, "/thread/abc", signal.Path)
		assert.True(t, at.Equal(signal.RevalidatedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no revalidation message published")
	}
}

func TestRedisRevalidateOverwritesTimestamp(t *testing.T) {
	ctx := context.Background()
	r, s := setupTestRedis(t)
	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return first }
	require.NoError(t, r.Revalidate(ctx, "/"))

	second := first.Add(time.Minute)
	r.now = func() time.Time { return second }
	require.NoError(t, r.Revalidate(ctx, "/"))

	s.CheckGet(t, RedisKeyPrefix+"/", second.Format(time.RFC3339Nano))
	assert.False(t, s.Exists(RedisKeyPrefix+"/never"))
}

func TestRedisRevalidateServerDown(t *testing.T) {
	r, s := setupTestRedis(t)
	s.Close()

	assert.Error(t, r.Revalidate(context.Background(), "/"))
}
