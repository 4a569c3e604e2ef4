package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cristianortiz/sneakerbid/internal/shared/config"
	userdomain "github.com/cristianortiz/sneakerbid/internal/user/domain"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestOpenStores_MemoryWithSeed(t *testing.T) {
	admin, sneaker := uuid.New(), uuid.New()
	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `{
		"users": [{"id": "` + admin.String() + `", "username": "root", "role": "admin"}],
		"sneakers": [{"id": "` + sneaker.String() + `", "title": "Jordan 1", "price": "7200", "condition": "best", "is_approved": true}]
	}`
	assert.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	s, err := openStores(context.Background(), config.Config{Store: "memory", SeedFile: path})
	assert.NoError(t, err)
	defer s.Close()

	user, err := s.users.GetByID(context.Background(), admin)
	assert.NoError(t, err)
	check.Equal(t, userdomain.RoleAdmin, user.Role)

	item, err := s.items.GetByID(context.Background(), sneaker)
	assert.NoError(t, err)
	check.Equal(t, "7200", item.Price.String())

	_, err = s.users.GetByID(context.Background(), uuid.New())
	check.True(t, errors.Is(err, userdomain.ErrUserNotFound))
}

func TestOpenStores_UnknownStore(t *testing.T) {
	_, err := openStores(context.Background(), config.Config{Store: "sqlite"})
	check.Error(t, err)
}
