package payroll

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"shiftplan/internal/auth"
	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

// GET /api/me/timesheet?period=this_month
func TimesheetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Timesheet(c.UserContext(), auth.CurrentUsername(c),
			Period(c.Query("period", string(PeriodThisMonth))), c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		return c.JSON(sum)
	}
}

// GET /api/payroll?username=emp1&from=2025-01-01&to=2025-01-31
// Without username every employee and admin with pay in the range is listed.
func PayrollHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := svc.rangeOrThisMonth(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}

		if username := c.Query("username"); username != "" {
			sum, err := svc.ForUsername(c.UserContext(), username, from, to)
			if err != nil {
				return err
			}
			list := []Summary{}
			if !sum.Empty() {
				list = append(list, *sum)
			}
			return c.JSON(list)
		}

		list, err := svc.ForAll(c.UserContext(), from, to)
		if err != nil {
			return err
		}
		return c.JSON(list)
	}
}

// GET /api/payroll/entries?username=emp1&from=...&to=...
func ListEntriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := store.PayrollEntryFilter{Username: c.Query("username")}
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
		entries, err := svc.ListEntries(c.UserContext(), filter)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// POST /api/payroll/entries
func CreateEntryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EntryInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		entry, err := svc.AddEntry(c.UserContext(), auth.CurrentUsername(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GET /api/payroll/export?from=2025-01-01&to=2025-01-31
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := svc.rangeOrThisMonth(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		list, err := svc.ForAll(c.UserContext(), from, to)
		if err != nil {
			return err
		}
		buf, err := Workbook(list)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="payroll_%s_%s.xlsx"`, from, to))
		return c.Send(buf.Bytes())
	}
}

func (s *Service) rangeOrThisMonth(from, to string) (models.Date, models.Date, error) {
	if from == "" && to == "" {
		return ResolvePeriod(PeriodThisMonth, s.now(), "", "")
	}
	return ParseRange(from, to)
}
