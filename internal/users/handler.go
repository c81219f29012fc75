package users

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shiftplan/internal/auth"
	"shiftplan/internal/models"
)

func profiles(list []models.User) []models.UserProfile {
	out := make([]models.UserProfile, 0, len(list))
	for i := range list {
		out = append(out, list[i].Profile())
	}
	return out
}

// -------------------------
// head_admin
// -------------------------

// GET /api/admin/users?role=admin
func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var roles []models.Role
		if r := c.Query("role"); r != "" {
			role := models.Role(r)
			if !role.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "unknown role")
			}
			roles = append(roles, role)
		}
		list, err := svc.List(c.UserContext(), roles...)
		if err != nil {
			return err
		}
		return c.JSON(profiles(list))
	}
}

// POST /api/admin/users
func CreateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		user, err := svc.Create(c.UserContext(), auth.CurrentUsername(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user.Profile())
	}
}

// PUT /api/admin/users/:username
func UpdateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		user, err := svc.Update(c.UserContext(), auth.CurrentUsername(c), c.Params("username"), body)
		if err != nil {
			return err
		}
		return c.JSON(user.Profile())
	}
}

// DELETE /api/admin/users/:username
func DeleteUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), auth.CurrentUsername(c), c.Params("username")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// admin
// -------------------------

// GET /api/employees
func ListEmployeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), models.RoleEmployee)
		if err != nil {
			return err
		}
		return c.JSON(profiles(list))
	}
}

// POST /api/employees
func CreateEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.Role = models.RoleEmployee
		user, err := svc.Create(c.UserContext(), auth.CurrentUsername(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user.Profile())
	}
}

// POST /api/employees/import (multipart, field "file", .xlsx)
func ImportEmployeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload missing: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "cannot open upload")
		}
		defer file.Close()

		res, err := svc.ImportEmployees(c.UserContext(), auth.CurrentUsername(c), file)
		if err != nil {
			return err
		}
		status := fiber.StatusOK
		if len(res.Created) > 0 {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(res)
	}
}
