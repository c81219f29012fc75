package shifts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftplan/internal/apperr"
	"shiftplan/internal/models"
)

func TestWeekStart(t *testing.T) {
	tests := map[string]string{
		"2025-03-10": "2025-03-10",
		"2025-03-12": "2025-03-10",
		"2025-03-16": "2025-03-10",
		"2025-03-17": "2025-03-17",
	}
	for in, want := range tests {
		d, err := models.ParseDate(in)
		require.NoError(t, err)
		assert.Equal(t, want, WeekStart(d).String(), in)
	}
}

func TestMonthCalendar(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	user, err := st.GetUser(ctx, "emp1")
	require.NoError(t, err)

	paid, err := svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-03", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftApproved})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-05", Type: models.ShiftMorning, Employees: []string{"emp1"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-20", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftPending})
	require.NoError(t, err)
	require.NoError(t, st.CreatePayrollEntry(ctx, &models.PayrollEntry{
		ID: "m1", Username: "emp1", Date: models.NewDate(2025, 3, 20), Amount: 40, Description: "Bonus",
	}))

	cal, err := svc.MonthCalendar(ctx, user, 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, "March 2025", cal.Name)
	require.Len(t, cal.Weeks, 6)

	// March 2025 starts on a Saturday
	first := cal.Weeks[0]
	for i := 0; i < 5; i++ {
		assert.Nil(t, first[i])
	}
	require.NotNil(t, first[5])
	assert.Equal(t, "2025-03-01", first[5].Date.String())
	assert.Equal(t, "2025-03-31", cal.Weeks[5][0].Date.String())
	assert.Nil(t, cal.Weeks[5][1])

	monday := cal.Weeks[1][0]
	require.Len(t, monday.Entries, 1)
	assert.Equal(t, StatePaid, monday.Entries[0].State)
	assert.Equal(t, paid.ID, monday.Entries[0].ShiftID)
	assert.Equal(t, 8.0, monday.Entries[0].Hours)
	assert.Equal(t, 160.0, monday.Entries[0].Pay)

	wednesday := cal.Weeks[1][2]
	require.Len(t, wednesday.Entries, 1)
	assert.Equal(t, StateCompletedUnapproved, wednesday.Entries[0].State)

	thursday := cal.Weeks[3][3]
	assert.Equal(t, "2025-03-20", thursday.Date.String())
	require.Len(t, thursday.Entries, 2)
	assert.Equal(t, StatePending, thursday.Entries[0].State)
	assert.Equal(t, StateManualPay, thursday.Entries[1].State)
	assert.Equal(t, 40.0, thursday.Entries[1].Pay)

	_, err = svc.MonthCalendar(ctx, user, 2025, 13)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}

func TestWeekCalendar(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	user, err := st.GetUser(ctx, "emp1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "admin1", CreateInput{Date: "2025-03-13", Type: models.ShiftMorning, Employees: []string{"emp1"}, Status: models.ShiftApproved})
	require.NoError(t, err)

	cal, err := svc.WeekCalendar(ctx, user, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", cal.WeekStart.String())
	require.Len(t, cal.Days, 7)
	assert.Equal(t, "Monday", cal.Days[0].Weekday)
	require.Len(t, cal.Days[3].Entries, 1)
	assert.Equal(t, StateApproved, cal.Days[3].Entries[0].State)
	assert.Empty(t, cal.Days[0].Entries)

	prev, err := svc.WeekCalendar(ctx, user, -1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", prev.WeekStart.String())

	_, err = svc.WeekCalendar(ctx, user, 100)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}
