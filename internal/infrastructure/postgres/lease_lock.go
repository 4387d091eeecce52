package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
	"github.com/jhoicas/timetracker-api/internal/domain"
)

var _ bootstrap.LockCoordinator = (*LeaseLock)(nil)

// LeaseLock lease en la tabla bootstrap_locks. Sirve a todas las réplicas que comparten la base
// sin depender de una conexión abierta (a diferencia de pg_advisory_lock).
type LeaseLock struct {
	q    Querier
	name string
	ttl  time.Duration
}

// NewLeaseLock construye el lease con nombre name y duración ttl.
func NewLeaseLock(q Querier, name string, ttl time.Duration) *LeaseLock {
	return &LeaseLock{q: q, name: name, ttl: ttl}
}

// Acquire inserta la fila o roba una ya expirada; con holder vigente no devuelve filas.
// El reloj es el de la base para que todas las réplicas coincidan.
func (l *LeaseLock) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	query := `
		INSERT INTO bootstrap_locks (name, holder, expires_at)
		VALUES ($1, $2, now() + $3 * interval '1 millisecond')
		ON CONFLICT (name) DO UPDATE
			SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
			WHERE bootstrap_locks.expires_at <= now()
		RETURNING holder`
	var holder string
	err := l.q.QueryRow(ctx, query, l.name, token, l.ttl.Milliseconds()).Scan(&holder)
	if err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", domain.ErrLockUnavailable, err)
	}
	return holder, holder == token, nil
}

// Release borra la fila solo si token sigue siendo el holder.
func (l *LeaseLock) Release(ctx context.Context, token string) error {
	_, err := l.q.Exec(ctx, `DELETE FROM bootstrap_locks WHERE name = $1 AND holder = $2`, l.name, token)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLockUnavailable, err)
	}
	return nil
}
