package http

import (
	"net/http/httptest"
	"testing"

	"github.com/cristianortiz/sneakerbid/internal/user/domain"
	"github.com/cristianortiz/sneakerbid/internal/user/infra/repository/memory"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func newTestApp(users domain.UserRepository) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(users))
	app.Get("/me", func(c *fiber.Ctx) error {
		user, _ := Principal(c)
		return c.SendString(user.ID.String())
	})
	app.Get("/admin", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthenticate(t *testing.T) {
	active := domain.User{ID: uuid.New(), Role: domain.RoleUser}
	blocked := domain.User{ID: uuid.New(), Role: domain.RoleUser, IsBlocked: true}
	admin := domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	app := newTestApp(memory.NewUserRepository(active, blocked, admin))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", fiber.StatusUnauthorized},
		{"malformed id", "/me", "not-a-uuid", fiber.StatusUnauthorized},
		{"unknown user", "/me", uuid.NewString(), fiber.StatusUnauthorized},
		{"blocked user", "/me", blocked.ID.String(), fiber.StatusForbidden},
		{"active user", "/me", active.ID.String(), fiber.StatusOK},
		{"user on admin route", "/admin", active.ID.String(), fiber.StatusForbidden},
		{"admin on admin route", "/admin", admin.ID.String(), fiber.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			resp, err := app.Test(req)
			assert.NoError(t, err)
			check.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthenticate_QueryFallback(t *testing.T) {
	user := domain.User{ID: uuid.New(), Role: domain.RoleUser}
	app := newTestApp(memory.NewUserRepository(user))

	resp, err := app.Test(httptest.NewRequest("GET", "/me?user_id="+user.ID.String(), nil))
	assert.NoError(t, err)
	check.Equal(t, fiber.StatusOK, resp.StatusCode)
}
