package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleNormal Role = "normal"
	RoleAdmin  Role = "admin"
)

func ToRole(s string) (Role, error) {
	switch Role(s) {
	case RoleNormal, RoleAdmin:
		return Role(s), nil
	}
	return "", errors.New("invalid role")
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusDeleted UserStatus = "deleted"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Status       UserStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionUser is the authenticated identity attached to each request.
type SessionUser struct {
	ID       uuid.UUID
	Email    string
	Username string
	Role     Role
}

func (u User) Session() SessionUser {
	return SessionUser{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
	}
}
