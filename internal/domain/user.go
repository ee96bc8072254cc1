package domain

import (
	"strings"
	"time"
)

// Role is the closed set of helpdesk roles.
type Role string

const (
	RoleEmployee      Role = "employee"
	RoleHROwner       Role = "hr_owner"
	RoleITOwner       Role = "it_owner"
	RoleAdminOwner    Role = "admin_owner"
	RoleAccountsOwner Role = "accounts_owner"
	RoleOwner         Role = "owner"
)

// Roles lists every role.
var Roles = []Role{
	RoleEmployee,
	RoleHROwner,
	RoleITOwner,
	RoleAdminOwner,
	RoleAccountsOwner,
	RoleOwner,
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// rolePermissions is the single source for which roles may own which categories.
// Assignee selection and notification fan-out both read it.
var rolePermissions = map[Role][]Category{
	RoleHROwner:       {CategoryHR, CategoryOthers},
	RoleITOwner:       {CategoryITInfrastructure},
	RoleAdminOwner:    {CategoryAdministration},
	RoleAccountsOwner: {CategoryAccounts},
	RoleOwner:         Categories,
}

// CanOwn reports whether r may be assigned tickets of category c.
func (r Role) CanOwn(c Category) bool {
	for _, allowed := range rolePermissions[r] {
		if allowed == c {
			return true
		}
	}
	return false
}

// IsStaff reports whether r handles tickets rather than raising them.
func (r Role) IsStaff() bool {
	return len(rolePermissions[r]) > 0
}

// RolesForCategory returns the roles permitted to own c, in Roles order.
func RolesForCategory(c Category) []Role {
	var out []Role
	for _, role := range Roles {
		if role.CanOwn(c) {
			out = append(out, role)
		}
	}
	return out
}

// User is an identity keyed by lowercase email.
type User struct {
	ID         string
	Email      string
	Name       string
	Role       Role
	Department *string
	EmployeeID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InternalID returns the employee id when set, otherwise the user id.
func (u *User) InternalID() string {
	if u.EmployeeID != nil && strings.TrimSpace(*u.EmployeeID) != "" {
		return *u.EmployeeID
	}
	return u.ID
}

// DisplayName falls back to the email when no name is stored.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// NormalizeEmail trims and lowercases an address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
