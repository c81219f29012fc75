package auth

import (
	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		token, user, err := svc.Login(c.UserContext(), body.Username, body.Password)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  user.Profile(),
		})
	}
}

// GET /api/auth/me
func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.Me(c.UserContext(), CurrentUsername(c))
		if err != nil {
			return err
		}
		return c.JSON(user.Profile())
	}
}

// PUT /api/auth/password
func ChangePasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if err := svc.ChangePassword(c.UserContext(), CurrentUsername(c), body.CurrentPassword, body.NewPassword); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
