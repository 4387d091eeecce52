package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
	"github.com/jhoicas/timetracker-api/internal/domain"
)

var _ bootstrap.LockCoordinator = (*RedisLock)(nil)

// releaseScript borra la clave solo si sigue perteneciendo al token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock lease compartido entre réplicas: SET NX PX con token aleatorio.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLock construye el lease sobre la clave "lock:<name>".
func NewRedisLock(client *redis.Client, name string, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, key: "lock:" + name, ttl: ttl}
}

// Acquire intenta tomar el lease. La expiración la aplica Redis.
func (l *RedisLock) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%w: redis setnx: %v", domain.ErrLockUnavailable, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release borra la clave de forma atómica si token sigue siendo el holder.
func (l *RedisLock) Release(ctx context.Context, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		return fmt.Errorf("%w: redis release: %v", domain.ErrLockUnavailable, err)
	}
	return nil
}
