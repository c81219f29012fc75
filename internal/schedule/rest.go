package schedule

import (
	"time"

	"shiftplan/internal/models"
)

// DefaultMinRest is the rest an employee needs between two shifts.
const DefaultMinRest = 12 * time.Hour

// Conflict is an existing shift closer to a candidate than the minimum rest.
type Conflict struct {
	ShiftID  string        `json:"shift_id"`
	Date     models.Date   `json:"date"`
	Gap      time.Duration `json:"-"`
	GapHours float64       `json:"gap_hours"`
	Overlaps bool          `json:"overlaps"`
}

// RestWindow returns the dates whose shifts can conflict with a shift on
// date. A shift lasts less than a day and may start just before midnight,
// so two days plus the rest period is enough on each side.
func RestWindow(date models.Date, minRest time.Duration) (models.Date, models.Date) {
	days := 2 + int((minRest+day-1)/day)
	return date.AddDays(-days), date.AddDays(days)
}

// CheckRest compares the candidate interval [start, end) against existing
// shifts of one employee. Declined shifts are ignored.
func CheckRest(start, end time.Time, existing []models.Shift, minRest time.Duration) ([]Conflict, error) {
	var conflicts []Conflict
	for i := range existing {
		s := &existing[i]
		if s.Status == models.ShiftDeclined {
			continue
		}
		from, to, err := ShiftInterval(s)
		if err != nil {
			return nil, err
		}

		var gap time.Duration
		overlaps := false
		switch {
		case !to.After(start):
			gap = start.Sub(to)
		case !from.Before(end):
			gap = from.Sub(end)
		default:
			overlaps = true
		}
		if overlaps || gap < minRest {
			conflicts = append(conflicts, Conflict{
				ShiftID:  s.ID,
				Date:     s.Date,
				Gap:      gap,
				GapHours: gap.Hours(),
				Overlaps: overlaps,
			})
		}
	}
	return conflicts, nil
}
