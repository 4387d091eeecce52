package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrIdentityProvider falla de un colaborador externo; es seguro reintentar.
	ErrIdentityProvider = errors.New("proveedor de identidad no disponible")
	// ErrLockUnavailable el backend del lock falló (no confundir con contención).
	ErrLockUnavailable = errors.New("coordinador de bloqueo no disponible")
)

// IsRetryable informa si err proviene de una falla transitoria de un colaborador.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrIdentityProvider) || errors.Is(err, ErrLockUnavailable)
}
