package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/pkg/util"
)

const principalLocalKey = "auth_principal"

// Principal is the authenticated employee attached to a request.
type Principal struct {
	Employee *domain.Employee
	Roles    domain.RoleSet
}

// Middleware authenticates requests and loads the employee record.
type Middleware struct {
	tokens    *TokenManager
	employees repository.EmployeeRepository
}

func NewMiddleware(tokens *TokenManager, employees repository.EmployeeRepository) *Middleware {
	return &Middleware{tokens: tokens, employees: employees}
}

// Authenticate parses the bearer token, loads the employee and stores
// the Principal in request locals.
func (m *Middleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return util.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return util.NewUnauthorized("malformed authorization header")
		}

		claims, err := m.tokens.ParseToken(parts[1])
		if err != nil {
			return util.NewUnauthorized("invalid or expired token")
		}

		employee, err := m.employees.GetByID(c.Context(), claims.EmployeeID)
		if err != nil {
			return util.NewUnauthorized("employee not found")
		}
		if employee.Status != domain.EmployeeStatusActive {
			return util.NewForbidden("employee account is suspended")
		}

		c.Locals(principalLocalKey, &Principal{Employee: employee, Roles: employee.Roles})
		return c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals(principalLocalKey).(*Principal)
	return p, ok && p != nil
}
