package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	FieldUsername = "username"
	FieldEmail    = "email"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("user already exists")
)

// ConflictError names the unique field that rejected a write.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldUsername:
		return "username already exists"
	case FieldEmail:
		return "email already in use"
	default:
		return "user already exists"
	}
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
