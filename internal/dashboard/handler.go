package dashboard

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// maxChartBuckets caps ?count on the chart endpoint.
const maxChartBuckets = 366

// GET /api/dashboard
func OverviewHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		o, err := svc.Overview(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(o)
	}
}

// GET /api/dashboard/hours-chart?period=daily&count=7
func HoursChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := ChartPeriod(c.Query("period", string(ChartDaily)))
		switch period {
		case ChartDaily, ChartWeekly, ChartMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}

		count := DefaultCount(period)
		if v := c.Query("count"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "count must be a number")
			}
			count = n
		}
		if count <= 0 || count > maxChartBuckets {
			return fiber.NewError(fiber.StatusBadRequest, "count is out of range")
		}

		resp, err := svc.HoursChart(c.UserContext(), period, count)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}
