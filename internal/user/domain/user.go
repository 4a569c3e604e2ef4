package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserBlocked  = errors.New("user is blocked")
	ErrForbidden    = errors.New("operation not allowed for this role")
)

// Role of an authenticated principal
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RolePayment Role = "payment" // the payment collaborator
)

// User is the principal acting on auctions. Accounts are managed elsewhere,
// this context only reads them.
type User struct {
	ID        uuid.UUID
	Username  string
	Role      Role
	IsBlocked bool
}

// CanAct rejects blocked users
func (u *User) CanAct() error {
	if u.IsBlocked {
		return ErrUserBlocked
	}
	return nil
}

// HasRole reports whether the user holds one of roles, admins pass every check
func (u *User) HasRole(roles ...Role) bool {
	if u.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UserRepository looks principals up by id
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
