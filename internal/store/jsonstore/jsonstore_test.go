package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	return s, dir
}

func TestUsersRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, dir := openTemp(t)

	u := &models.User{Username: "emp1", Role: models.RoleEmployee, Name: "Employee 1", HourlyRate: 20}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "emp1"}), store.ErrConflict)

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, err := reopened.GetUser(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, "Employee 1", got.Name)
	assert.Equal(t, 20.0, got.HourlyRate)

	got.Name = "Renamed"
	require.NoError(t, reopened.UpdateUser(ctx, got))
	again, err := reopened.GetUser(ctx, "emp1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	require.NoError(t, reopened.DeleteUser(ctx, "emp1"))
	_, err = reopened.GetUser(ctx, "emp1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, reopened.DeleteUser(ctx, "emp1"), store.ErrNotFound)
	assert.ErrorIs(t, reopened.UpdateUser(ctx, &models.User{Username: "ghost"}), store.ErrNotFound)
}

func TestListUsersByRole(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	for _, u := range []models.User{
		{Username: "boss", Role: models.RoleHeadAdmin},
		{Username: "admin1", Role: models.RoleAdmin},
		{Username: "emp2", Role: models.RoleEmployee},
		{Username: "emp1", Role: models.RoleEmployee},
	} {
		require.NoError(t, s.CreateUser(ctx, &u))
	}

	emps, err := s.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee}})
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, "emp1", emps[0].Username)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestShiftsAreCopiedOnTheWayInAndOut(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	sh := &models.Shift{
		ID:                "s1",
		Date:              models.NewDate(2025, time.June, 2),
		Type:              models.ShiftMorning,
		PlannedStart:      "06:00",
		PlannedEnd:        "14:00",
		AssignedEmployees: []string{"emp1"},
		Status:            models.ShiftPending,
	}
	require.NoError(t, s.CreateShift(ctx, sh))
	sh.AssignedEmployees[0] = "mutated"

	got, err := s.GetShift(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"emp1"}, got.AssignedEmployees)

	got.Status = models.ShiftAccepted
	require.NoError(t, s.UpdateShift(ctx, got))

	list, err := s.ListShifts(ctx, store.ShiftFilter{Username: "emp1", Statuses: []models.ShiftStatus{models.ShiftAccepted}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)

	assert.ErrorIs(t, s.UpdateShift(ctx, &models.Shift{ID: "missing"}), store.ErrNotFound)
}

func TestPayrollEntriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.CreatePayrollEntry(ctx, &models.PayrollEntry{ID: "a", Username: "emp1", Date: models.NewDate(2025, 1, 5), Amount: 10}))
	require.NoError(t, s.CreatePayrollEntry(ctx, &models.PayrollEntry{ID: "b", Username: "emp1", Date: models.NewDate(2025, 2, 5), Amount: 20}))
	require.NoError(t, s.CreatePayrollEntry(ctx, &models.PayrollEntry{ID: "c", Username: "emp2", Date: models.NewDate(2025, 2, 6), Amount: 30}))

	from := models.NewDate(2025, 1, 1)
	to := models.NewDate(2025, 12, 31)
	list, err := s.ListPayrollEntries(ctx, store.PayrollEntryFilter{Username: "emp1", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestAuditLogsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.WriteAuditLog(ctx, &models.AuditLog{ID: id, EntityType: "shift"}))
	}
	logs, err := s.ListAuditLogs(ctx, store.AuditFilter{EntityType: "shift", Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "3", logs[0].ID)
	assert.Equal(t, "2", logs[1].ID)
}

func TestLegacyFilesAreMigrated(t *testing.T) {
	dir := t.TempDir()
	users := `{
  "emp1": {
    "username": "emp1",
    "password": "2f9b6e3bbd0f...",
    "role": "employee",
    "name": "Employee 1",
    "email": "emp1@company.com",
    "primary_shift": "late",
    "secondary_shift": "weekend_night",
    "hourly_rate": 20.0
  }
}`
	shifts := `{
  "shift_1": {
    "id": "shift_1",
    "date": "2025-06-02",
    "shift_type": "night",
    "planned_start": "22:00",
    "planned_end": "06:00",
    "assigned_employees": ["emp1"],
    "assigned_admin": "admin1",
    "status": "accepted",
    "approved": true,
    "actual_start": "22:00",
    "actual_end": "06:00"
  },
  "manual_payroll_1": {
    "id": "manual_payroll_1",
    "date": "2025-06-03",
    "shift_type": "manual_payroll",
    "planned_start": "00:00",
    "planned_end": "00:00",
    "assigned_employees": ["emp1"],
    "assigned_admin": "admin1",
    "status": "approved",
    "approved": true,
    "manual_amount": 150.5,
    "description": "Bonus"
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, usersFile), []byte(users), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, shiftsFile), []byte(shifts), 0o644))

	s, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	u, err := s.GetUser(ctx, "emp1")
	require.NoError(t, err)
	require.NotNil(t, u.SecondaryShift)
	assert.Equal(t, models.ShiftWeekendNight, *u.SecondaryShift)

	sh, err := s.GetShift(ctx, "shift_1")
	require.NoError(t, err)
	assert.Equal(t, models.ShiftApproved, sh.Status)

	_, err = s.GetShift(ctx, "manual_payroll_1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	entries, err := s.ListPayrollEntries(ctx, store.PayrollEntryFilter{Username: "emp1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 150.5, entries[0].Amount)
	assert.Equal(t, "Bonus", entries[0].Description)
	assert.Equal(t, "admin1", entries[0].CreatedBy)

	_, err = os.Stat(filepath.Join(dir, payrollFile))
	assert.NoError(t, err)
}

func TestCreateShiftsBatch(t *testing.T) {
	ctx := context.Background()
	s, dir := openTemp(t)

	batch := []models.Shift{
		{ID: "b1", Date: models.NewDate(2025, time.June, 2), Type: models.ShiftMorning, PlannedStart: "06:00", PlannedEnd: "14:00", AssignedEmployees: []string{"emp1"}, Status: models.ShiftApproved},
		{ID: "b2", Date: models.NewDate(2025, time.June, 3), Type: models.ShiftMorning, PlannedStart: "06:00", PlannedEnd: "14:00", AssignedEmployees: []string{"emp1"}, Status: models.ShiftApproved},
	}
	require.NoError(t, s.CreateShifts(ctx, batch))

	dup := []models.Shift{{ID: "b3"}, {ID: "b1"}}
	assert.ErrorIs(t, s.CreateShifts(ctx, dup), store.ErrConflict)

	reopened, err := Open(dir)
	require.NoError(t, err)
	n, err := reopened.CountShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
