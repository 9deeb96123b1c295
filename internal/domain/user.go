package domain

import (
	"context"
	"time"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// User represents a registered patient or doctor.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// IsDoctor reports whether the user has the doctor role.
func (u *User) IsDoctor() bool {
	return u != nil && u.Role == RoleDoctor
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create stores a new user. If user.ID is empty the repository assigns one.
	// Returns ErrDuplicateEmail when the email is already registered and
	// ErrDuplicateID when user.ID is taken. On error user is left unchanged.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Delete removes a user. Returns ErrNotFound when no such user exists.
	Delete(ctx context.Context, id string) error
}
