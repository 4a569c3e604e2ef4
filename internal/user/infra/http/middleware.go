// Package http resolves the authenticated principal of a request. Authentication
// itself happens upstream, the gateway forwards the user id in a header.
package http

import (
	"errors"

	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/cristianortiz/sneakerbid/internal/user/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// UserIDHeader carries the principal id set by the gateway
	UserIDHeader = "X-User-ID"
	// UserIDQuery is the fallback for websocket upgrades, browsers cannot set headers there
	UserIDQuery = "user_id"

	principalKey = "principal"
)

// Authenticate loads the principal and stores it in the request locals.
// 401 when the id is missing or unknown, 403 when the user is blocked.
func Authenticate(users domain.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(UserIDHeader)
		if raw == "" {
			raw = c.Query(UserIDQuery)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing or invalid user id"})
		}

		user, err := users.GetByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
			log.Error("Failed to load principal", zap.String("userID", id.String()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		if err := user.CanAct(); err != nil {
			log.Warn("Blocked user rejected", zap.String("userID", id.String()), zap.String("path", c.Path()))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals(principalKey, user)
		return c.Next()
	}
}

// RequireRole must run after Authenticate
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := Principal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
		}
		if !user.HasRole(roles...) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": domain.ErrForbidden.Error()})
		}
		return c.Next()
	}
}

// Principal returns the user stored by Authenticate
func Principal(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok
}
