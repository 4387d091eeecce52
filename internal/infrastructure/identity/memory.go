package identity

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

var _ ports.IdentityProvider = (*MemoryProvider)(nil)

// MemoryProvider proveedor en memoria para desarrollo local y tests.
type MemoryProvider struct {
	mu         sync.Mutex
	identities map[string]entity.Identity
	setRole    int
	failWith   error
	selfSignup bool
}

// NewMemoryProvider crea el proveedor con identidades iniciales.
func NewMemoryProvider(identities ...entity.Identity) *MemoryProvider {
	p := &MemoryProvider{identities: make(map[string]entity.Identity)}
	for _, id := range identities {
		p.identities[id.ID] = id
	}
	return p
}

// Put registra o reemplaza una identidad.
func (p *MemoryProvider) Put(id entity.Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identities[id.ID] = id
}

// EnableSelfRegistration permite que Register dé de alta identidades desconocidas.
func (p *MemoryProvider) EnableSelfRegistration() *MemoryProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selfSignup = true
	return p
}

// Register da de alta la identidad si no existe y devuelve la almacenada.
// Con el alta deshabilitada responde domain.ErrNotFound.
func (p *MemoryProvider) Register(_ context.Context, id entity.Identity) (*entity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	if cur, ok := p.identities[id.ID]; ok {
		return &cur, nil
	}
	if !p.selfSignup || id.ID == "" || id.Email == "" {
		return nil, domain.ErrNotFound
	}
	id.Role = entity.RoleNone
	p.identities[id.ID] = id
	return &id, nil
}

// FailWith hace que todas las llamadas siguientes fallen con err (nil lo desactiva).
func (p *MemoryProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failWith = err
}

// SetRoleCalls cantidad de escrituras de rol realizadas.
func (p *MemoryProvider) SetRoleCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setRole
}

// GetIdentity devuelve la identidad o domain.ErrNotFound.
func (p *MemoryProvider) GetIdentity(_ context.Context, identityID string) (*entity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	id, ok := p.identities[identityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &id, nil
}

// GetRole rol actual; una identidad desconocida no tiene rol.
func (p *MemoryProvider) GetRole(_ context.Context, identityID string) (entity.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return entity.RoleNone, p.failWith
	}
	return p.identities[identityID].Role, nil
}

// SetRole escribe el rol creando la identidad si no existe.
func (p *MemoryProvider) SetRole(_ context.Context, identityID string, role entity.Role) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	id := p.identities[identityID]
	id.ID = identityID
	id.Role = role
	p.identities[identityID] = id
	p.setRole++
	return nil
}

// ListIdentities devuelve hasta limit identidades ordenadas por ID.
func (p *MemoryProvider) ListIdentities(_ context.Context, limit int) ([]entity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return nil, p.failWith
	}
	out := make([]entity.Identity, 0, len(p.identities))
	for _, id := range p.identities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
