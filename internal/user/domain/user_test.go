package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/check"
)

func TestUser_Roles(t *testing.T) {
	admin := &User{ID: uuid.New(), Role: RoleAdmin}
	payment := &User{ID: uuid.New(), Role: RolePayment}
	bidder := &User{ID: uuid.New(), Role: RoleUser}

	check.True(t, admin.HasRole(RolePayment))
	check.True(t, payment.HasRole(RolePayment))
	check.False(t, bidder.HasRole(RolePayment, RoleAdmin))
	check.False(t, payment.HasRole(RoleAdmin))
}

func TestUser_CanAct(t *testing.T) {
	check.NoError(t, (&User{}).CanAct())
	check.True(t, errors.Is((&User{IsBlocked: true}).CanAct(), ErrUserBlocked))
}
