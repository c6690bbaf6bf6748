package domain

import "time"

// EmployeeStatus represents lifecycle states for an employee account.
type EmployeeStatus string

const (
	EmployeeStatusActive    EmployeeStatus = "ACTIVE"
	EmployeeStatusSuspended EmployeeStatus = "SUSPENDED"
)

// Employee models any actor in the approval workflow. A single employee
// may hold several role tags at once; the RoleSet carries them all.
type Employee struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	DepartmentID string
	Roles        RoleSet
	Status       EmployeeStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
