package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shiftplan/internal/models"
)

func TestImportEmployees(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"username", "password", "name", "email", "primary_shift", "secondary_shift", "hourly_rate"},
		{"emp50", "secret1", "Fifty", "emp50@company.com", "Night", "weekend_night", "21,5"},
		{"emp51", "secret1", "Fifty One", "emp51@company.com", "morning", "None", "19"},
		{"emp52", "secret1", "Broken", "emp52@company.com", "morning", "late", "19"},
		{"emp53", "secret1", "Bad Rate", "emp53@company.com", "morning", "", "lots"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := svc.ImportEmployees(ctx, "admin1", buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"emp50", "emp51"}, res.Created)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 4, res.Failed[0].Row)
	assert.Equal(t, "emp53", res.Failed[1].Username)

	emp50, err := st.GetUser(ctx, "emp50")
	require.NoError(t, err)
	assert.Equal(t, models.ShiftNight, emp50.PrimaryShift)
	assert.Equal(t, 21.5, emp50.HourlyRate)
	assert.Equal(t, models.RoleEmployee, emp50.Role)

	emp51, err := st.GetUser(ctx, "emp51")
	require.NoError(t, err)
	assert.Nil(t, emp51.SecondaryShift)
}
