package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/pkg/jwt"
)

// Locals keys para la identidad de la sesión en Fiber.
const (
	LocalIdentityID = "identity_id"
	LocalEmail      = "email"
)

// AuthMiddleware valida el Bearer Token JWT y extrae la identidad y el email a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		identityID, email, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalIdentityID, identityID)
		c.Locals(LocalEmail, email)
		return c.Next()
	}
}

// GetIdentityID devuelve la identidad del contexto (después del middleware de auth).
func GetIdentityID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalIdentityID).(string)
	return s
}

// GetEmail devuelve el email del token, si lo trae.
func GetEmail(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalEmail).(string)
	return s
}
