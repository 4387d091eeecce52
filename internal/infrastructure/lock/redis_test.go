package lock_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/infrastructure/lock"
)

// Requiere un Redis real: TEST_REDIS_ADDR=localhost:6379.
func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	l := lock.NewRedisLock(client, "test-"+uuid.NewString(), 5*time.Second)

	token, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, token))
	_, ok, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ExpiraSinRelease(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	l := lock.NewRedisLock(client, "test-"+uuid.NewString(), 200*time.Millisecond)

	_, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, err := l.Acquire(ctx)
		return err == nil && ok
	}, 2*time.Second, 50*time.Millisecond)
}

func TestRedisLock_ReleaseConTokenAjeno(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	l := lock.NewRedisLock(client, "test-"+uuid.NewString(), 5*time.Second)

	_, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "otro-token"))
	_, ok, _ = l.Acquire(ctx)
	assert.False(t, ok, "un token ajeno no libera el lease")
}

func TestRedisLock_BackendCaido(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	l := lock.NewRedisLock(client, "down", time.Second)

	_, ok, err := l.Acquire(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrLockUnavailable))
}
