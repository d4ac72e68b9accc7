package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/domain"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// RequireRole permits only principals whose role appears in the allow-list.
// No hierarchy is implied; every route names its exact allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("you do not have permission to perform this action")
		}
		return c.Next()
	}
}

// RequireKind gates by principal kind (admin account vs branch staff) rather
// than by role.
func RequireKind(kinds ...domain.PrincipalKind) fiber.Handler {
	kindSet := make(map[domain.PrincipalKind]struct{}, len(kinds))
	for _, kind := range kinds {
		kindSet[kind] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := kindSet[principal.Kind]; !exists {
			return apperrors.NewForbidden("you do not have permission to perform this action")
		}
		return c.Next()
	}
}
