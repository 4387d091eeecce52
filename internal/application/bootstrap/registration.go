package bootstrap

import (
	"context"
	"fmt"
)

// RegistrationStatus indica si la pantalla de alta debe ofrecerse (solo antes del primer usuario).
type RegistrationStatus struct {
	Allowed            bool
	LocalEmployees     bool
	ProviderIdentities bool
	// Degraded el proveedor falló y se permitió el alta por defecto.
	Degraded bool
}

// RegistrationStatus usa la misma señal de existencia que el bootstrap.
// Si el proveedor de identidad falla se permite el registro para no bloquear la instalación;
// el bootstrap sigue protegido por el lease.
func (s *AdmissionService) RegistrationStatus(ctx context.Context) (*RegistrationStatus, error) {
	n, err := s.employees.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar empleados: %w", err)
	}
	if n > 0 {
		return &RegistrationStatus{Allowed: false, LocalEmployees: true}, nil
	}

	identities, err := s.idp.ListIdentities(ctx, 1)
	if err != nil {
		s.log.Warn().Err(err).Msg("estado de registro: proveedor no disponible, se permite el alta")
		return &RegistrationStatus{Allowed: true, Degraded: true}, nil
	}
	hasIdentities := len(identities) > 0
	return &RegistrationStatus{
		Allowed:            !hasIdentities,
		ProviderIdentities: hasIdentities,
	}, nil
}
