package shifts

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"shiftplan/internal/apperr"
	"shiftplan/internal/models"
	"shiftplan/internal/payroll"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

type DayState string

const (
	StatePaid                DayState = "paid"
	StateApproved            DayState = "approved"
	StateCompletedUnapproved DayState = "completed_unapproved"
	StateAccepted            DayState = "accepted"
	StatePending             DayState = "pending"
	StateDeclined            DayState = "declined"
	StateManualPay           DayState = "manual_pay"
)

// MaxWeekOffset bounds how far the weekly view can move from the current week.
const MaxWeekOffset = 52

type CalendarEntry struct {
	State        DayState         `json:"state"`
	ShiftID      string           `json:"shift_id,omitempty"`
	Type         models.ShiftType `json:"shift_type,omitempty"`
	PlannedStart string           `json:"planned_start,omitempty"`
	PlannedEnd   string           `json:"planned_end,omitempty"`
	ActualStart  *string          `json:"actual_start,omitempty"`
	ActualEnd    *string          `json:"actual_end,omitempty"`
	Hours        float64          `json:"hours,omitempty"`
	Pay          float64          `json:"pay,omitempty"`
	Description  string           `json:"description,omitempty"`
}

type CalendarDay struct {
	Date    models.Date     `json:"date"`
	Weekday string          `json:"weekday"`
	Entries []CalendarEntry `json:"entries"`
}

// MonthCalendar is a Monday-first grid; days outside the month are null.
type MonthCalendar struct {
	Year  int              `json:"year"`
	Month time.Month       `json:"month"`
	Name  string           `json:"name"`
	Weeks [][]*CalendarDay `json:"weeks"`
}

type WeekCalendar struct {
	Offset    int           `json:"offset"`
	WeekStart models.Date   `json:"week_start"`
	Days      []CalendarDay `json:"days"`
}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d models.Date) models.Date {
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-back)
}

func (s *Service) MonthCalendar(ctx context.Context, user *models.User, year int, month time.Month) (*MonthCalendar, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Invalid("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return nil, apperr.Invalid("year %d is out of range", year)
	}

	first := models.NewDate(year, month, 1)
	last := models.DateOf(first.AddDate(0, 1, -1))
	days, err := s.days(ctx, user, first, last)
	if err != nil {
		return nil, err
	}

	cal := &MonthCalendar{Year: year, Month: month, Name: fmt.Sprintf("%s %d", month, year)}
	week := make([]*CalendarDay, 7)
	for i := range days {
		col := (int(days[i].Date.Weekday()) + 6) % 7
		week[col] = &days[i]
		if col == 6 {
			cal.Weeks = append(cal.Weeks, week)
			week = make([]*CalendarDay, 7)
		}
	}
	if slices.ContainsFunc(week, func(d *CalendarDay) bool { return d != nil }) {
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal, nil
}

func (s *Service) WeekCalendar(ctx context.Context, user *models.User, offset int) (*WeekCalendar, error) {
	if offset < -MaxWeekOffset || offset > MaxWeekOffset {
		return nil, apperr.Invalid("offset must be between -%d and %d", MaxWeekOffset, MaxWeekOffset)
	}
	start := WeekStart(models.DateOf(s.now())).AddDays(7 * offset)
	days, err := s.days(ctx, user, start, start.AddDays(6))
	if err != nil {
		return nil, err
	}
	return &WeekCalendar{Offset: offset, WeekStart: start, Days: days}, nil
}

// days builds one CalendarDay per date in [from, to].
func (s *Service) days(ctx context.Context, user *models.User, from, to models.Date) ([]CalendarDay, error) {
	shifts, err := s.store.ListShifts(ctx, store.ShiftFilter{Username: user.Username, From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	entries, err := s.store.ListPayrollEntries(ctx, store.PayrollEntryFilter{Username: user.Username, From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list payroll entries: %w", err)
	}

	byDate := make(map[string][]CalendarEntry)
	slices.SortStableFunc(shifts, func(a, b models.Shift) int {
		return cmp.Or(a.Date.Compare(b.Date.Time), strings.Compare(a.PlannedStart, b.PlannedStart))
	})
	now := schedule.WallTime(s.now())
	for i := range shifts {
		entry, err := shiftEntry(&shifts[i], user.HourlyRate, now)
		if err != nil {
			return nil, err
		}
		key := shifts[i].Date.String()
		byDate[key] = append(byDate[key], entry)
	}
	for _, e := range entries {
		key := e.Date.String()
		byDate[key] = append(byDate[key], CalendarEntry{
			State:       StateManualPay,
			Pay:         e.Amount,
			Description: e.Description,
		})
	}

	var days []CalendarDay
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		list := byDate[d.String()]
		if list == nil {
			list = []CalendarEntry{}
		}
		days = append(days, CalendarDay{Date: d, Weekday: d.Weekday().String(), Entries: list})
	}
	return days, nil
}

func shiftEntry(sh *models.Shift, rate float64, now time.Time) (CalendarEntry, error) {
	_, end, err := schedule.ShiftInterval(sh)
	if err != nil {
		return CalendarEntry{}, fmt.Errorf("shift %s: %w", sh.ID, err)
	}
	ended := !end.After(now)

	entry := CalendarEntry{
		ShiftID:      sh.ID,
		Type:         sh.Type,
		PlannedStart: sh.PlannedStart,
		PlannedEnd:   sh.PlannedEnd,
		ActualStart:  sh.ActualStart,
		ActualEnd:    sh.ActualEnd,
	}
	switch {
	case sh.Approved() && ended:
		entry.State = StatePaid
		line, err := payroll.Pay(sh, rate)
		if err != nil {
			return CalendarEntry{}, err
		}
		entry.Hours, entry.Pay = line.Hours, line.Pay
	case sh.Approved():
		entry.State = StateApproved
	case ended && sh.Status != models.ShiftDeclined:
		entry.State = StateCompletedUnapproved
	default:
		entry.State = DayState(sh.Status)
	}
	return entry, nil
}

