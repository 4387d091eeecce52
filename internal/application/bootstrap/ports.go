package bootstrap

import "context"

// LockCoordinator exclusión mutua con lease entre peticiones y procesos.
//
// Acquire no bloquea: ok=false con err=nil significa que otro holder tiene el lease.
// El lease expira solo aunque nunca se llame a Release (holder caído).
// Release solo libera si token coincide con el holder actual.
type LockCoordinator interface {
	Acquire(ctx context.Context) (token string, ok bool, err error)
	Release(ctx context.Context, token string) error
}

// Recorder recibe cada resultado decidido (métricas).
type Recorder interface {
	ObserveBootstrap(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveBootstrap(string) {}
