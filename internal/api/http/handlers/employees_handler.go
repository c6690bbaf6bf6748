package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/dto"
	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// EmployeesHandler exposes registration, login and profile endpoints.
type EmployeesHandler struct {
	authService *service.AuthService
}

// NewEmployeesHandler returns a new handler instance.
func NewEmployeesHandler(authService *service.AuthService) *EmployeesHandler {
	return &EmployeesHandler{authService: authService}
}

// Register creates a new employee account.
func (h *EmployeesHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return util.NewValidationError("email and password are required", nil)
	}

	employee, token, exp, err := h.authService.Register(c.UserContext(), service.RegisterInput{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
		Roles:        req.Roles,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"employee": employeeResponse(employee),
		"auth":     dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login authenticates an employee.
func (h *EmployeesHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}

	employee, token, exp, err := h.authService.Login(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"employee": employeeResponse(employee),
		"auth":     dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Me returns the authenticated employee's profile.
func (h *EmployeesHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(employeeResponse(principal.Employee))
}

func employeeResponse(e *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		DepartmentID: e.DepartmentID,
		Roles:        e.Roles.Strings(),
		Status:       string(e.Status),
	}
}
