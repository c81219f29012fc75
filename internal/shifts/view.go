package shifts

import (
	"context"
	"fmt"

	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

type ShiftView struct {
	models.Shift
	EmployeeNames []string `json:"employee_names"`
	AdminName     string   `json:"admin_name,omitempty"`
	PlannedHours  float64  `json:"planned_hours"`
}

// Describe attaches display names and planned hours. Usernames of deleted
// accounts are shown as they are.
func (s *Service) Describe(ctx context.Context, list []models.Shift) ([]ShiftView, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Username] = u.Name
	}
	display := func(username string) string {
		if n, ok := names[username]; ok {
			return n
		}
		return username
	}

	views := make([]ShiftView, 0, len(list))
	for _, sh := range list {
		v := ShiftView{Shift: sh, EmployeeNames: make([]string, 0, len(sh.AssignedEmployees))}
		for _, e := range sh.AssignedEmployees {
			v.EmployeeNames = append(v.EmployeeNames, display(e))
		}
		if sh.AssignedAdmin != nil {
			v.AdminName = display(*sh.AssignedAdmin)
		}
		if h, err := schedule.Hours(sh.PlannedStart, sh.PlannedEnd); err == nil {
			v.PlannedHours = h
		}
		views = append(views, v)
	}
	return views, nil
}
