package model

import (
	"time"
)

// Role is one of the fixed actor categories. There is no dynamic role
// creation: the set below is the whole universe.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleDoctor       Role = "doctor"
)

// Valid reports whether r is one of the known roles. Unknown roles are
// still accepted as input everywhere a Role is read; they just resolve to
// an all-false permission set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleDoctor:
		return true
	}
	return false
}

// User status constants
const (
	UserStatusActive = "active"
	UserStatusLocked = "locked"
)

// User represents a system actor (staff member), not a patient.
type User struct {
	Base
	Name             string     `json:"name" db:"name"`
	Email            string     `json:"email" db:"email"`
	Role             Role       `json:"role" db:"role"`
	Password         string     `json:"password,omitempty" db:"-"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Status           string     `json:"status" db:"status"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	LoginAttempts    int        `json:"-" db:"login_attempts"`
	LastLoginAttempt time.Time  `json:"-" db:"last_login_attempt"`

	// Presence is derived from the realtime store, never persisted here.
	Presence *Presence `json:"presence,omitempty" db:"-"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role" binding:"required,oneof=admin receptionist doctor"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *Role   `json:"role" binding:"omitempty,oneof=admin receptionist doctor"`
}

type UserFilters struct {
	Role       Role   `json:"role" form:"role"`
	SearchTerm string `json:"search_term" form:"search_term"`
}
