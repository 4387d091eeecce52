package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timetracker-api/internal/infrastructure/lock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLock_SegundoAcquireFallaMientrasHayHolder(t *testing.T) {
	ctx := context.Background()
	l := lock.NewMemoryLock(10 * time.Second)

	token, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, ok, err = l.Acquire(ctx)
	require.NoError(t, err, "la contención no es un error")
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, token))
	_, ok, err = l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "tras liberar el lease debe poder tomarse otra vez")
}

// Un holder que nunca libera (proceso caído) no bloquea para siempre.
func TestMemoryLock_ExpiraSinRelease(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := lock.NewMemoryLock(10 * time.Second).WithClock(clock.Now)

	_, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(9 * time.Second)
	_, ok, _ = l.Acquire(ctx)
	assert.False(t, ok, "antes del vencimiento sigue ocupado")

	clock.Advance(time.Second)
	token, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "al vencer el lease otro holder lo toma")
	assert.NotEmpty(t, token)
}

func TestMemoryLock_ReleaseConTokenAjenoNoLibera(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := lock.NewMemoryLock(10 * time.Second).WithClock(clock.Now)

	stale, ok, _ := l.Acquire(ctx)
	require.True(t, ok)
	clock.Advance(11 * time.Second)
	current, ok, _ := l.Acquire(ctx)
	require.True(t, ok)
	require.NotEqual(t, stale, current)

	// El holder viejo vuelve y libera: no debe soltar el lease del nuevo.
	require.NoError(t, l.Release(ctx, stale))
	_, ok, _ = l.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, current))
	_, ok, _ = l.Acquire(ctx)
	assert.True(t, ok)
}

func TestMemoryLock_UnSoloGanadorConcurrente(t *testing.T) {
	ctx := context.Background()
	l := lock.NewMemoryLock(time.Minute)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := l.Acquire(ctx); err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestMemoryLock_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := lock.NewMemoryLock(time.Second).Acquire(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}
