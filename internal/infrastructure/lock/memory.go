// Package lock implementa bootstrap.LockCoordinator sobre distintos backends.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
)

var _ bootstrap.LockCoordinator = (*MemoryLock)(nil)

// MemoryLock lease dentro de un solo proceso. Útil con STORE_BACKEND=memory y en tests.
type MemoryLock struct {
	mu      sync.Mutex
	ttl     time.Duration
	holder  string
	expires time.Time
	now     func() time.Time
}

// NewMemoryLock crea el lease con la duración indicada.
func NewMemoryLock(ttl time.Duration) *MemoryLock {
	return &MemoryLock{ttl: ttl, now: time.Now}
}

// WithClock reemplaza el reloj (tests de expiración).
func (l *MemoryLock) WithClock(now func() time.Time) *MemoryLock {
	l.now = now
	return l
}

// Acquire toma el lease si está libre o expirado.
func (l *MemoryLock) Acquire(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.holder != "" && now.Before(l.expires) {
		return "", false, nil
	}
	l.holder = uuid.NewString()
	l.expires = now.Add(l.ttl)
	return l.holder, true, nil
}

// Release libera solo si token es el holder actual; en otro caso no hace nada.
func (l *MemoryLock) Release(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if token != "" && token == l.holder {
		l.holder = ""
		l.expires = time.Time{}
	}
	return nil
}
