package users

import (
	"errors"
	"time"
)

// Role enumerates the access levels of an account.
type Role string

const (
	// RoleRoot is the vendor superuser account.
	RoleRoot Role = "root"
	// RoleAdmin manages catalog, users and settings.
	RoleAdmin Role = "admin"
	// RoleCashier operates the point of sale.
	RoleCashier Role = "cashier"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleRoot, RoleAdmin, RoleCashier:
		return true
	}
	return false
}

// User represents an operator account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"required,oneof=root admin cashier"`
}

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateUsername indicates the username is taken.
	ErrDuplicateUsername = errors.New("users: username already exists")
)
