// Package payroll prices approved shifts and manual entries for a period.
package payroll

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
)

type LineKind string

const (
	LineShift  LineKind = "shift"
	LineManual LineKind = "manual"
)

type Line struct {
	Kind        LineKind         `json:"kind"`
	Date        models.Date      `json:"date"`
	RefID       string           `json:"ref_id"`
	ShiftType   models.ShiftType `json:"shift_type,omitempty"`
	Start       string           `json:"start,omitempty"`
	End         string           `json:"end,omitempty"`
	Hours       float64          `json:"hours"`
	Rate        float64          `json:"rate"`
	Pay         float64          `json:"pay"`
	Description string           `json:"description,omitempty"`
}

type Summary struct {
	Username    string      `json:"username"`
	Name        string      `json:"name"`
	Role        models.Role `json:"role"`
	From        models.Date `json:"from"`
	To          models.Date `json:"to"`
	TotalHours  float64     `json:"total_hours"`
	TotalPay    float64     `json:"total_pay"`
	AverageRate float64     `json:"average_rate"`
	Lines       []Line      `json:"lines"`
}

// Empty reports whether the summary has nothing to pay.
func (s *Summary) Empty() bool {
	return s.TotalHours == 0 && s.TotalPay == 0
}

// Pay prices one shift. Only approved shifts earn money; the worked
// (actual, else planned) times decide the hours.
func Pay(sh *models.Shift, rate float64) (Line, error) {
	start, end := sh.WorkedTimes()
	line := Line{
		Kind:      LineShift,
		Date:      sh.Date,
		RefID:     sh.ID,
		ShiftType: sh.Type,
		Start:     start,
		End:       end,
		Rate:      rate,
	}
	if !sh.Approved() {
		return line, nil
	}
	hours, err := schedule.Hours(start, end)
	if err != nil {
		return Line{}, fmt.Errorf("shift %s: %w", sh.ID, err)
	}
	line.Hours = hours
	line.Pay = round2(hours * rate)
	return line, nil
}

// Summarize totals the approved shifts and manual entries of user. Manual
// lines add pay without hours. Lines are ordered newest first.
func Summarize(user *models.User, from, to models.Date, shifts []models.Shift, entries []models.PayrollEntry) (*Summary, error) {
	sum := &Summary{
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		From:     from,
		To:       to,
		Lines:    make([]Line, 0),
	}
	for i := range shifts {
		sh := &shifts[i]
		if !sh.Approved() || !sh.HasEmployee(user.Username) || !sh.Date.Between(from, to) {
			continue
		}
		line, err := Pay(sh, user.HourlyRate)
		if err != nil {
			return nil, err
		}
		sum.TotalHours += line.Hours
		sum.TotalPay += line.Hours * line.Rate
		sum.Lines = append(sum.Lines, line)
	}
	for _, e := range entries {
		if e.Username != user.Username || !e.Date.Between(from, to) {
			continue
		}
		sum.TotalPay += e.Amount
		sum.Lines = append(sum.Lines, Line{
			Kind:        LineManual,
			Date:        e.Date,
			RefID:       e.ID,
			Pay:         e.Amount,
			Description: e.Description,
		})
	}

	// totals are rounded once; line pay is rounded for display only
	if sum.TotalHours > 0 {
		sum.AverageRate = round2(sum.TotalPay / sum.TotalHours)
	}
	sum.TotalHours = round2(sum.TotalHours)
	sum.TotalPay = round2(sum.TotalPay)
	slices.SortStableFunc(sum.Lines, func(a, b Line) int {
		return cmp.Or(b.Date.Compare(a.Date.Time), strings.Compare(a.Start, b.Start))
	})
	return sum, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
