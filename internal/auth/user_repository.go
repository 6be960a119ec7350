package auth

import (
	"errors"
	"time"
)

// User is an operator account of the inspection API.
// Operators are declared in configuration; there is no self-registration.
type User struct {
	ID           uint64    // Sequential identifier, stable within one process
	Username     string    // Unique username (case-insensitive)
	PasswordHash string    // bcrypt hash from configuration
	LastLogin    time.Time // Last successful login, zero if never
	IsAdmin      bool      // Grants the /api/admin routes
}

// UserRepository is what the REST layer needs to authenticate operators.
type UserRepository interface {
	// GetUserByID returns a user by ID or (nil, ErrUserNotFound).
	GetUserByID(id uint64) (*User, error)

	// ValidateCredentials returns the user if the password matches,
	// otherwise ErrInvalidCredentials.
	ValidateCredentials(username, password string) (*User, error)
}

// Domain-level errors returned by the repository.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
