package model

import (
	"fmt"
	"time"
)

// User represents an authentication user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles. Admins run the catalog and shipments, sales staff submit orders
// against their own clients.
const (
	RoleAdmin = "admin"
	RoleSales = "sales"
)

// Actor is the identity performing an operation, passed explicitly into
// store and engine calls instead of being looked up from ambient state.
type Actor struct {
	ID   int64
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ValidRole reports whether role is a recognized role name.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSales
}

// ValidatePassword checks minimum password requirements for new passwords.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
