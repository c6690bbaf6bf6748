package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/request-workflow/internal/auth"
	"github.com/spec-kit/request-workflow/internal/config"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// AuthService coordinates employee registration and login.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, employees repository.EmployeeRepository) *AuthService {
	return &AuthService{
		employees:  employees,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput describes a new employee account.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	DepartmentID string
	Roles        []string
}

// Register creates a new employee account. Every account holds at least
// the requestor role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Employee, string, time.Time, error) {
	if _, err := s.employees.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", time.Time{}, util.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	roles := domain.NewRoleSet(input.Roles...)
	if !roles.Has(domain.RoleRequestor) {
		roles = roles.With(domain.RoleRequestor)
	}

	employee := &domain.Employee{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		DepartmentID: input.DepartmentID,
		Roles:        roles,
		Status:       domain.EmployeeStatusActive,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(employee)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return employee, token, exp, nil
}

// Login authenticates an employee and issues a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Employee, string, time.Time, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	if employee.Status != domain.EmployeeStatusActive {
		return nil, "", time.Time{}, util.NewForbidden("employee account is suspended")
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(employee)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return employee, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
