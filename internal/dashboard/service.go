package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"shiftplan/internal/models"
	"shiftplan/internal/payroll"
	"shiftplan/internal/store"
)

type Overview struct {
	TotalEmployees   int         `json:"total_employees"`
	TotalAdmins      int         `json:"total_admins"`
	TotalShifts      int         `json:"total_shifts"`
	PendingApprovals int         `json:"pending_approvals"`
	PendingResponses int         `json:"pending_responses"`
	ShiftsToday      int         `json:"shifts_today"`
	Today            models.Date `json:"today"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	today := models.DateOf(s.now())
	o := &Overview{Today: today}

	employees, err := s.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee}})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	admins, err := s.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleAdmin}})
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	o.TotalEmployees, o.TotalAdmins = len(employees), len(admins)

	if o.TotalShifts, err = s.store.CountShifts(ctx); err != nil {
		return nil, fmt.Errorf("count shifts: %w", err)
	}

	open, err := s.store.ListShifts(ctx, store.ShiftFilter{
		Statuses: []models.ShiftStatus{models.ShiftPending, models.ShiftAccepted},
	})
	if err != nil {
		return nil, fmt.Errorf("list open shifts: %w", err)
	}
	for _, sh := range open {
		if sh.Status == models.ShiftAccepted {
			o.PendingApprovals++
		} else {
			o.PendingResponses++
		}
	}

	todays, err := s.store.ListShifts(ctx, store.ShiftFilter{From: &today, To: &today})
	if err != nil {
		return nil, fmt.Errorf("list today's shifts: %w", err)
	}
	o.ShiftsToday = len(todays)
	return o, nil
}

// -------------------------
// Hours chart
// -------------------------

type ChartPeriod string

const (
	ChartDaily   ChartPeriod = "daily"
	ChartWeekly  ChartPeriod = "weekly"
	ChartMonthly ChartPeriod = "monthly"
)

type ChartPoint struct {
	Label  string  `json:"label"` // first day of the bucket
	Shifts int     `json:"shifts"`
	Hours  float64 `json:"hours"`
	Pay    float64 `json:"pay"`
}

type ChartTotals struct {
	Shifts int     `json:"shifts"`
	Hours  float64 `json:"hours"`
	Pay    float64 `json:"pay"`
}

type ChartResponse struct {
	Period      ChartPeriod  `json:"period"`
	From        models.Date  `json:"from"`
	To          models.Date  `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grand_totals"`
}

// DefaultCount is the number of buckets shown when none is requested.
func DefaultCount(p ChartPeriod) int {
	switch p {
	case ChartWeekly:
		return 8
	case ChartMonthly:
		return 12
	}
	return 7
}

// HoursChart buckets approved hours and pay of the last count days, weeks
// or months, ending with the current one. Empty buckets are kept.
func (s *Service) HoursChart(ctx context.Context, period ChartPeriod, count int) (*ChartResponse, error) {
	today := models.DateOf(s.now())

	var starts []models.Date
	switch period {
	case ChartWeekly:
		monday := today.AddDays(-((int(today.Weekday()) + 6) % 7))
		for i := count - 1; i >= 0; i-- {
			starts = append(starts, monday.AddDays(-7*i))
		}
	case ChartMonthly:
		first := models.NewDate(today.Year(), today.Month(), 1)
		for i := count - 1; i >= 0; i-- {
			starts = append(starts, models.DateOf(first.AddDate(0, -i, 0)))
		}
	default:
		period = ChartDaily
		for i := count - 1; i >= 0; i-- {
			starts = append(starts, today.AddDays(-i))
		}
	}
	from := starts[0]
	to := bucketEnd(period, starts[len(starts)-1])

	shifts, err := s.store.ListShifts(ctx, store.ShiftFilter{
		From:     &from,
		To:       &to,
		Statuses: []models.ShiftStatus{models.ShiftApproved},
	})
	if err != nil {
		return nil, fmt.Errorf("list approved shifts: %w", err)
	}
	users, err := s.store.ListUsers(ctx, store.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	rates := make(map[string]float64, len(users))
	for _, u := range users {
		rates[u.Username] = u.HourlyRate
	}

	points := make([]ChartPoint, len(starts))
	for i, st := range starts {
		points[i].Label = st.String()
	}
	resp := &ChartResponse{Period: period, From: from, To: to}

	for i := range shifts {
		sh := &shifts[i]
		idx := -1
		for j := len(starts) - 1; j >= 0; j-- {
			if !sh.Date.Before(starts[j].Time) {
				idx = j
				break
			}
		}
		if idx < 0 {
			continue
		}
		for _, username := range sh.AssignedEmployees {
			line, err := payroll.Pay(sh, rates[username])
			if err != nil {
				return nil, err
			}
			points[idx].Hours += line.Hours
			points[idx].Pay += line.Pay
		}
		points[idx].Shifts++
	}

	for i := range points {
		points[i].Hours = round2(points[i].Hours)
		points[i].Pay = round2(points[i].Pay)
		resp.GrandTotals.Shifts += points[i].Shifts
		resp.GrandTotals.Hours += points[i].Hours
		resp.GrandTotals.Pay += points[i].Pay
	}
	resp.GrandTotals.Hours = round2(resp.GrandTotals.Hours)
	resp.GrandTotals.Pay = round2(resp.GrandTotals.Pay)
	resp.Points = points
	return resp, nil
}

func bucketEnd(p ChartPeriod, start models.Date) models.Date {
	switch p {
	case ChartWeekly:
		return start.AddDays(6)
	case ChartMonthly:
		return models.DateOf(start.AddDate(0, 1, -1))
	}
	return start
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
