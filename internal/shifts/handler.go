package shifts

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shiftplan/internal/auth"
	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

// -------------------------
// admin
// -------------------------

// POST /api/shifts
func CreateShiftHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		shift, err := svc.Create(c.UserContext(), auth.CurrentUsername(c), body)
		if err != nil {
			return err
		}
		views, err := svc.Describe(c.UserContext(), []models.Shift{*shift})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(views[0])
	}
}

// GET /api/shifts?from=2025-01-01&to=2025-01-31&status=accepted&employee=emp1
func ListShiftsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := store.ShiftFilter{Username: c.Query("employee")}

		if v := c.Query("from"); v != "" {
			d, err := models.ParseDate(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			filter.From = &d
		}
		if v := c.Query("to"); v != "" {
			d, err := models.ParseDate(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			filter.To = &d
		}
		if v := c.Query("status"); v != "" {
			for _, part := range strings.Split(v, ",") {
				st := models.ShiftStatus(strings.TrimSpace(part))
				if !st.Valid() {
					return fiber.NewError(fiber.StatusBadRequest, "unknown status "+string(st))
				}
				filter.Statuses = append(filter.Statuses, st)
			}
		}

		list, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return err
		}
		views, err := svc.Describe(c.UserContext(), list)
		if err != nil {
			return err
		}
		return c.JSON(views)
	}
}

// GET /api/shifts/pending
func PendingShiftsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.PendingApproval(c.UserContext())
		if err != nil {
			return err
		}
		views, err := svc.Describe(c.UserContext(), list)
		if err != nil {
			return err
		}
		return c.JSON(views)
	}
}

// POST /api/shifts/:id/approve
func ApproveShiftHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ApproveInput
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		shift, err := svc.Approve(c.UserContext(), auth.CurrentUsername(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(shift)
	}
}

// -------------------------
// employee
// -------------------------

// GET /api/me/shifts
func MyShiftsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all, pending, err := svc.ForEmployee(c.UserContext(), auth.CurrentUsername(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"pending": pending,
			"shifts":  all,
		})
	}
}

// POST /api/me/shifts/:id/accept
func AcceptShiftHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shift, err := svc.Accept(c.UserContext(), auth.CurrentUsername(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(shift)
	}
}

// POST /api/me/shifts/:id/decline
func DeclineShiftHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shift, err := svc.Decline(c.UserContext(), auth.CurrentUsername(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(shift)
	}
}

// GET /api/me/calendar/monthly?year=2025&month=3
func MonthlyCalendarHandler(svc *Service, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.Get(c.UserContext(), auth.CurrentUsername(c))
		if err != nil {
			return err
		}

		now := time.Now()
		year, month := now.Year(), int(now.Month())
		if v := c.Query("year"); v != "" {
			if year, err = strconv.Atoi(v); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "year must be a number")
			}
		}
		if v := c.Query("month"); v != "" {
			if month, err = strconv.Atoi(v); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "month must be a number")
			}
		}

		cal, err := svc.MonthCalendar(c.UserContext(), user, year, time.Month(month))
		if err != nil {
			return err
		}
		return c.JSON(cal)
	}
}

// GET /api/me/calendar/weekly?offset=-1
func WeeklyCalendarHandler(svc *Service, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := users.Get(c.UserContext(), auth.CurrentUsername(c))
		if err != nil {
			return err
		}
		offset := 0
		if v := c.Query("offset"); v != "" {
			if offset, err = strconv.Atoi(v); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "offset must be a number")
			}
		}
		cal, err := svc.WeekCalendar(c.UserContext(), user, offset)
		if err != nil {
			return err
		}
		return c.JSON(cal)
	}
}
