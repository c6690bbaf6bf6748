package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// RequireRole allows the request through when the principal holds at
// least one of the given roles.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthorized("authentication required")
		}
		for _, role := range roles {
			if principal.Roles.Has(role) {
				return c.Next()
			}
		}
		return util.NewForbidden("insufficient role")
	}
}
