package auth

import (
	"errors"
	"time"
)

// User is an operator account. The password hash never leaves the package.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

const RoleAdmin = "ADMIN"

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike, so
	// responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already registered")
	// ErrWeakPassword indicates a password below the minimum length.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
)
