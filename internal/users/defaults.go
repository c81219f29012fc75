package users

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shiftplan/internal/auth"
	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
)

const (
	DefaultAdminPassword    = "admin123"
	DefaultEmployeePassword = "emp123"

	defaultAdmins    = 5
	defaultEmployees = 25
)

// DefaultUsers builds the starter accounts: one head_admin, five admins and
// 25 employees whose primary shift rotates through the catalog.
func DefaultUsers() ([]models.User, error) {
	adminHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return nil, err
	}
	empHash, err := auth.HashPassword(DefaultEmployeePassword)
	if err != nil {
		return nil, err
	}

	secondary := models.ShiftWeekendMorning
	list := []models.User{{
		Username:       "head_admin",
		PasswordHash:   adminHash,
		Role:           models.RoleHeadAdmin,
		Name:           "Head Administrator",
		Email:          "head@company.com",
		PrimaryShift:   models.ShiftMorning,
		SecondaryShift: &secondary,
		HourlyRate:     30,
	}}

	for i := 1; i <= defaultAdmins; i++ {
		primary, second := rotatingShifts(i)
		list = append(list, models.User{
			Username:       fmt.Sprintf("admin%d", i),
			PasswordHash:   adminHash,
			Role:           models.RoleAdmin,
			Name:           fmt.Sprintf("Admin %d", i),
			Email:          fmt.Sprintf("admin%d@company.com", i),
			PrimaryShift:   primary,
			SecondaryShift: second,
			HourlyRate:     25,
		})
	}
	for i := 1; i <= defaultEmployees; i++ {
		primary, second := rotatingShifts(i)
		list = append(list, models.User{
			Username:       fmt.Sprintf("emp%d", i),
			PasswordHash:   empHash,
			Role:           models.RoleEmployee,
			Name:           fmt.Sprintf("Employee %d", i),
			Email:          fmt.Sprintf("emp%d@company.com", i),
			PrimaryShift:   primary,
			SecondaryShift: second,
			HourlyRate:     20,
		})
	}
	return list, nil
}

func rotatingShifts(i int) (models.ShiftType, *models.ShiftType) {
	types := schedule.Types()
	primary := types[i%len(types)]
	compatible := schedule.Compatible(primary)
	if len(compatible) == 0 {
		return primary, nil
	}
	return primary, &compatible[0]
}

// EnsureDefaults creates the starter accounts when the store has no users.
// It returns how many were created.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	list, err := DefaultUsers()
	if err != nil {
		return 0, fmt.Errorf("build default users: %w", err)
	}
	for i := range list {
		if err := s.store.CreateUser(ctx, &list[i]); err != nil {
			return i, fmt.Errorf("create %s: %w", list[i].Username, err)
		}
	}
	s.log.Info("default users created", zap.Int("count", len(list)))
	return len(list), nil
}
