package ports

import (
	"context"

	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// IdentityProvider define el puerto de salida hacia el proveedor de identidad externo.
// Es la fuente de verdad de "quién es el llamante" y del claim de rol.
// Los adaptadores deben envolver las fallas de red con domain.ErrIdentityProvider.
type IdentityProvider interface {
	// GetIdentity devuelve la identidad o domain.ErrNotFound.
	GetIdentity(ctx context.Context, identityID string) (*entity.Identity, error)
	// GetRole devuelve el claim de rol tipado (RoleNone si no tiene).
	GetRole(ctx context.Context, identityID string) (entity.Role, error)
	// SetRole escribe el claim de rol. Idempotente.
	SetRole(ctx context.Context, identityID string, role entity.Role) error
	// ListIdentities devuelve hasta limit identidades registradas.
	ListIdentities(ctx context.Context, limit int) ([]entity.Identity, error)
}
