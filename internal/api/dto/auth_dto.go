package dto

import "time"

// RegisterRequest payload for new employee accounts.
type RegisterRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	DepartmentID string   `json:"department_id"`
	Roles        []string `json:"roles"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmployeeResponse is the public shape of an employee account.
type EmployeeResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	DepartmentID string   `json:"department_id,omitempty"`
	Roles        []string `json:"roles"`
	Status       string   `json:"status"`
}
