package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// LocalActor key del actor resuelto en c.Locals.
const LocalActor = "actor"

// actorResolver es el contrato mínimo que necesita el middleware para armar el actor.
// Lo implementa *usecase.EmployeeUseCase.
type actorResolver interface {
	Actor(ctx context.Context, identityID string) (entity.Actor, error)
}

// ResolveActor carga el empleado y el rol del llamante. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 si no hay identidad en el contexto.
//   - 503 si el proveedor de identidad o la base fallan (reintentable).
func ResolveActor(resolver actorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identityID := GetIdentityID(c)
		if identityID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "identidad no encontrada en el token",
			})
		}
		actor, err := resolver.Actor(c.UserContext(), identityID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Code:    "UNKNOWN_IDENTITY",
					Message: "la identidad no existe en el proveedor",
				})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "RETRYABLE",
				Message: "no se pudo resolver el usuario, intente más tarde",
			})
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// RequireAdmin corta con 403 si el actor no es administrador. Va después de ResolveActor.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetActor(c).Role.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "se requiere rol administrador",
			})
		}
		return c.Next()
	}
}

// GetActor devuelve el actor resuelto (zero value si no pasó por ResolveActor).
func GetActor(c *fiber.Ctx) entity.Actor {
	a, _ := c.Locals(LocalActor).(entity.Actor)
	return a
}
