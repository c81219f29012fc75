package shifts

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
	"shiftplan/internal/store/jsonstore"
)

var fixedNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) // Wednesday

func strPtr(s string) *string { return &s }

func typePtr(t models.ShiftType) *models.ShiftType { return &t }

func newTestService(t *testing.T) (*Service, *jsonstore.Store) {
	t.Helper()
	st, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	for _, u := range []models.User{
		{Username: "admin1", Role: models.RoleAdmin, Name: "Admin 1", PrimaryShift: models.ShiftLate, HourlyRate: 25},
		{Username: "emp1", Role: models.RoleEmployee, Name: "Employee 1", PrimaryShift: models.ShiftMorning, SecondaryShift: typePtr(models.ShiftWeekendMorning), HourlyRate: 20},
		{Username: "emp2", Role: models.RoleEmployee, Name: "Employee 2", PrimaryShift: models.ShiftNight, SecondaryShift: typePtr(models.ShiftWeekendNight), HourlyRate: 20},
	} {
		require.NoError(t, st.CreateUser(ctx, &u))
	}

	svc := NewService(st, audit.NewRecorder(st, nil), nil, schedule.DefaultMinRest)
	svc.now = func() time.Time { return fixedNow }
	return svc, st
}

func TestCreateDefaults(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, "admin1", CreateInput{
		Date:      "2025-03-10",
		Type:      models.ShiftMorning,
		Employees: []string{"emp1", "emp1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "06:00", shift.PlannedStart)
	assert.Equal(t, "14:00", shift.PlannedEnd)
	assert.Equal(t, models.ShiftAccepted, shift.Status)
	assert.Equal(t, []string{"emp1"}, shift.AssignedEmployees)
	assert.Nil(t, shift.ActualStart)
	assert.NotEmpty(t, shift.ID)

	custom, err := svc.Create(ctx, "admin1", CreateInput{
		Date:          "2025-03-11",
		Type:          models.ShiftNight,
		Employees:     []string{"emp2"},
		PlannedStart:  "21:00",
		AssignedAdmin: strPtr("admin1"),
		Status:        models.ShiftApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, "05:00", custom.PlannedEnd)
	require.NotNil(t, custom.ActualEnd)
	assert.Equal(t, "05:00", *custom.ActualEnd)

	logs, err := st.ListAuditLogs(ctx, store.AuditFilter{EntityType: audit.EntityShift})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"bad date", CreateInput{Date: "10.03.2025", Type: models.ShiftMorning, Employees: []string{"emp1"}}},
		{"no employees", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning}},
		{"unknown employee", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"ghost"}}},
		{"admin as employee", CreateInput{Date: "2025-03-10", Type: models.ShiftLate, Employees: []string{"admin1"}}},
		{"type not allowed", CreateInput{Date: "2025-03-10", Type: models.ShiftLate, Employees: []string{"emp1", "emp2"}}},
		{"bad clock", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}, PlannedStart: "25:00"}},
		{"admin not admin", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}, AssignedAdmin: strPtr("emp2")}},
		{"declined status", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftDeclined}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "admin1", tt.in)
			assert.True(t, apperr.IsKind(err, apperr.KindInvalid), "got %v", err)
		})
	}

	// the union of both employees' types is allowed
	_, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftNight, Employees: []string{"emp1", "emp2"}})
	assert.NoError(t, err)
}

func TestCreateRejectsShortRest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftNight, Employees: []string{"emp2"}})
	require.NoError(t, err)

	// night ends 06:00 on the 11th, 16:00 start leaves only 10h
	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-11", Type: models.ShiftNight, Employees: []string{"emp2"}, PlannedStart: "16:00"})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUnprocessable, ae.Kind)
	assert.Contains(t, ae.Message, "Employee 2")

	// an earlier shift that ends too close to the existing one is also rejected
	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftNight, Employees: []string{"emp2"}, PlannedStart: "08:00", PlannedEnd: "12:00"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	// 22:00 on the 11th is 16h after the previous end
	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-11", Type: models.ShiftNight, Employees: []string{"emp2"}})
	assert.NoError(t, err)
}

func TestDeclinedShiftsDoNotBlock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftPending})
	require.NoError(t, err)
	_, err = svc.Decline(ctx, "emp1", first.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}})
	assert.NoError(t, err)
}

func TestApprove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	full, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-03", Type: models.ShiftMorning, Employees: []string{"emp1"}})
	require.NoError(t, err)
	partial, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-05", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftPending})
	require.NoError(t, err)

	pending, err := svc.PendingApproval(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	approved, err := svc.Approve(ctx, "admin1", full.ID, ApproveInput{})
	require.NoError(t, err)
	assert.Equal(t, models.ShiftApproved, approved.Status)
	assert.Equal(t, "06:00", *approved.ActualStart)
	assert.Equal(t, "14:00", *approved.ActualEnd)

	approved, err = svc.Approve(ctx, "admin1", partial.ID, ApproveInput{ActualStart: strPtr("7:15"), ActualEnd: strPtr("13:00")})
	require.NoError(t, err)
	assert.Equal(t, "07:15", *approved.ActualStart)

	_, err = svc.Approve(ctx, "admin1", full.ID, ApproveInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	_, err = svc.Approve(ctx, "admin1", "missing", ApproveInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	pending, err = svc.PendingApproval(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRespond(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-14", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftPending})
	require.NoError(t, err)

	_, err = svc.Accept(ctx, "emp2", shift.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	all, pending, err := svc.ForEmployee(ctx, "emp1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, pending, 1)

	accepted, err := svc.Accept(ctx, "emp1", shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftAccepted, accepted.Status)

	_, err = svc.Decline(ctx, "emp1", shift.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, pending, err = svc.ForEmployee(ctx, "emp1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDescribe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-10", Type: models.ShiftMorning, Employees: []string{"emp1"}, AssignedAdmin: strPtr("admin1")})
	require.NoError(t, err)

	views, err := svc.Describe(ctx, []models.Shift{*shift})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, []string{"Employee 1"}, views[0].EmployeeNames)
	assert.Equal(t, "Admin 1", views[0].AdminName)
	assert.Equal(t, 8.0, views[0].PlannedHours)
}

func TestCreateRestWindowFollowsMinimum(t *testing.T) {
	svc, _ := newTestService(t)
	svc.minRest = 48 * time.Hour
	ctx := context.Background()

	// ends 2025-03-21 06:00
	_, err := svc.Create(ctx, "admin1", CreateInput{
		Date:         "2025-03-20",
		Type:         models.ShiftMorning,
		Employees:    []string{"emp1"},
		PlannedStart: "20:00",
		PlannedEnd:   "06:00",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "admin1", CreateInput{
		Date:         "2025-03-23",
		Type:         models.ShiftWeekendMorning,
		Employees:    []string{"emp1"},
		PlannedStart: "00:00",
		PlannedEnd:   "06:00",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	assert.Contains(t, err.Error(), "less than 48h rest")

	_, err = svc.Create(ctx, "admin1", CreateInput{
		Date:         "2025-03-23",
		Type:         models.ShiftWeekendMorning,
		Employees:    []string{"emp1"},
		PlannedStart: "06:00",
	})
	require.NoError(t, err)
}

func TestCreateConcurrentSameEmployee(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, "admin1", CreateInput{
				Date:         "2025-03-10",
				Type:         models.ShiftMorning,
				Employees:    []string{"emp1"},
				PlannedStart: fmt.Sprintf("%02d:00", 6+i),
			})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, apperr.IsKind(err, apperr.KindUnprocessable), err.Error())
	}
	assert.Equal(t, 1, created)

	list, err := st.ListShifts(ctx, store.ShiftFilter{Username: "emp1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
