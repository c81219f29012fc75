package schedule

import (
	"fmt"
	"time"

	"shiftplan/internal/models"
)

const day = 24 * time.Hour

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock accepts 24h "HH:MM" (a single hour digit is tolerated).
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add moves the clock by d, wrapping around midnight.
func (c Clock) Add(d time.Duration) Clock {
	m := (int(c) + int(d/time.Minute)) % (24 * 60)
	if m < 0 {
		m += 24 * 60
	}
	return Clock(m)
}

func (c Clock) offset() time.Duration {
	return time.Duration(c) * time.Minute
}

// NormalizeClock validates s and returns it in canonical HH:MM form.
func NormalizeClock(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Duration is the time between two clocks. An end before the start means the
// shift runs past midnight; equal clocks give zero.
func Duration(start, end string) (time.Duration, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	d := e.offset() - s.offset()
	if d < 0 {
		d += day
	}
	return d, nil
}

func Hours(start, end string) (float64, error) {
	d, err := Duration(start, end)
	if err != nil {
		return 0, err
	}
	return d.Hours(), nil
}

// DefaultEnd keeps the catalog length of t for a custom start time.
func DefaultEnd(t models.ShiftType, start string) (string, error) {
	def, ok := Lookup(t)
	if !ok {
		return "", fmt.Errorf("unknown shift type %q", t)
	}
	length, err := Duration(def.Start, def.End)
	if err != nil {
		return "", err
	}
	s, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	return s.Add(length).String(), nil
}

// Interval places a shift on the time line. The end falls on the next day
// when it is earlier than the start.
func Interval(date models.Date, start, end string) (time.Time, time.Time, error) {
	s, err := ParseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	length, err := Duration(start, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := date.Add(s.offset())
	return from, from.Add(length), nil
}

// ShiftInterval places s using its worked (actual, else planned) times.
func ShiftInterval(s *models.Shift) (time.Time, time.Time, error) {
	start, end := s.WorkedTimes()
	return Interval(s.Date, start, end)
}

// WallTime maps t onto the UTC-based time line used by Interval, keeping
// t's local date and clock.
func WallTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
