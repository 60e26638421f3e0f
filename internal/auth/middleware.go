package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/models"
)

const (
	CtxUserIDKey    = "user_id"
	CtxUserRoleKey  = "user_role"
	CtxCompanyIDKey = "company_id"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Não autenticado")
		}

		tokenStr, ok := BearerToken(authHeader)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Formato de Authorization deve ser 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token inválido ou expirado")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxCompanyIDKey, claims.CompanyID)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Perfil do usuário indisponível")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Você não tem permissão para esta operação")
	}
}

// CompanyID is the tenant of the authenticated caller. Empty outside
// JWTMiddleware.
func CompanyID(c *fiber.Ctx) string {
	v, _ := c.Locals(CtxCompanyIDKey).(string)
	return v
}

func UserID(c *fiber.Ctx) string {
	v, _ := c.Locals(CtxUserIDKey).(string)
	return v
}

func Role(c *fiber.Ctx) models.UserRole {
	v, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	return v
}
