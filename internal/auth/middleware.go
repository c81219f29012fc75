package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

const (
	CtxUsernameKey = "username"
	CtxUserRoleKey = "user_role"
)

func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CtxUsernameKey, claims.Username)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

// UserGetter is the part of store.Store ReloadUser needs.
type UserGetter interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// ReloadUser runs after JWTMiddleware and replaces the role from the token
// with the stored one. Deleted accounts are rejected.
func ReloadUser(users UserGetter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.GetUser(c.UserContext(), CurrentUsername(c))
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
		}
		if err != nil {
			return err
		}
		c.Locals(CtxUserRoleKey, user.Role)
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.Role)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from token")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "not allowed for your role")
	}
}

// CurrentUsername returns the username stored by JWTMiddleware.
func CurrentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(CtxUsernameKey).(string)
	return username
}

func CurrentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(CtxUserRoleKey).(models.Role)
	return role
}
