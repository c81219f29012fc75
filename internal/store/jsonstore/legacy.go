package jsonstore

import "shiftplan/internal/models"

// Older shifts.json files kept manual payroll adjustments as pseudo shifts
// of this type, with an explicit approved flag next to the status.
const manualPayrollType models.ShiftType = "manual_payroll"

type legacyShift struct {
	models.Shift
	Approved     bool    `json:"approved"`
	ManualAmount float64 `json:"manual_amount"`
	Description  string  `json:"description"`
}

func (ls legacyShift) payrollEntry() models.PayrollEntry {
	e := models.PayrollEntry{
		ID:          ls.ID,
		Date:        ls.Date,
		Amount:      ls.ManualAmount,
		Description: ls.Description,
		CreatedAt:   ls.CreatedAt,
	}
	if len(ls.AssignedEmployees) > 0 {
		e.Username = ls.AssignedEmployees[0]
	}
	if ls.AssignedAdmin != nil {
		e.CreatedBy = *ls.AssignedAdmin
	}
	return e
}
