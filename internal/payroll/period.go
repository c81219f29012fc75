package payroll

import (
	"time"

	"shiftplan/internal/apperr"
	"shiftplan/internal/models"
)

type Period string

const (
	PeriodThisWeek  Period = "this_week"
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodThisYear  Period = "this_year"
	PeriodCustom    Period = "custom"
)

// ResolvePeriod turns a named period into inclusive dates relative to now.
// Custom periods need both from and to.
func ResolvePeriod(p Period, now time.Time, from, to string) (models.Date, models.Date, error) {
	today := models.DateOf(now)
	switch p {
	case PeriodThisWeek:
		monday := today.AddDays(-((int(today.Weekday()) + 6) % 7))
		return monday, monday.AddDays(6), nil
	case PeriodThisMonth, "":
		first := models.NewDate(today.Year(), today.Month(), 1)
		return first, models.DateOf(first.AddDate(0, 1, -1)), nil
	case PeriodLastMonth:
		first := models.DateOf(models.NewDate(today.Year(), today.Month(), 1).AddDate(0, -1, 0))
		return first, models.DateOf(first.AddDate(0, 1, -1)), nil
	case PeriodThisYear:
		return models.NewDate(today.Year(), time.January, 1), models.NewDate(today.Year(), time.December, 31), nil
	case PeriodCustom:
		return ParseRange(from, to)
	}
	return models.Date{}, models.Date{}, apperr.Invalid("unknown period %q", p)
}

// ParseRange parses an explicit inclusive date range.
func ParseRange(from, to string) (models.Date, models.Date, error) {
	if from == "" || to == "" {
		return models.Date{}, models.Date{}, apperr.Invalid("from and to are required")
	}
	f, err := models.ParseDate(from)
	if err != nil {
		return models.Date{}, models.Date{}, apperr.Invalid("%s", err.Error())
	}
	t, err := models.ParseDate(to)
	if err != nil {
		return models.Date{}, models.Date{}, apperr.Invalid("%s", err.Error())
	}
	if t.Before(f.Time) {
		return models.Date{}, models.Date{}, apperr.Invalid("from must not be after to")
	}
	return f, t, nil
}
