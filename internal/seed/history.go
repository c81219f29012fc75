// Package seed fills a store with demo shift history.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

const (
	DefaultHistoryDays = 365

	minShiftsPerEmployee = 50
	maxShiftsPerEmployee = 350
	jitterMinutes        = 10
)

type Result struct {
	Employees int `json:"employees"`
	Shifts    int `json:"shifts"`
}

type Generator struct {
	store   store.Store
	log     *zap.Logger
	rng     *rand.Rand
	minRest time.Duration
	now     func() time.Time
}

func NewGenerator(st store.Store, log *zap.Logger, rng *rand.Rand, minRest time.Duration) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if minRest <= 0 {
		minRest = schedule.DefaultMinRest
	}
	return &Generator{store: st, log: log, rng: rng, minRest: minRest, now: time.Now}
}

// GenerateHistory gives every employee 1 to 7 approved shifts per week over
// the last days, using only the employee's primary and secondary types.
// Worked times drift up to ten minutes from the plan. Employees below 50
// shifts are topped up at random days; nobody gets more than 350.
func (g *Generator) GenerateHistory(ctx context.Context, days int) (Result, error) {
	if days <= 0 {
		return Result{}, fmt.Errorf("days must be positive, got %d", days)
	}
	employees, err := g.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee}})
	if err != nil {
		return Result{}, fmt.Errorf("list employees: %w", err)
	}
	admins, err := g.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleAdmin}})
	if err != nil {
		return Result{}, fmt.Errorf("list admins: %w", err)
	}

	today := models.DateOf(g.now())
	start := today.AddDays(-days)

	var res Result
	for i := range employees {
		n, err := g.employeeHistory(ctx, &employees[i], admins, start, today)
		if err != nil {
			return res, err
		}
		res.Employees++
		res.Shifts += n
		g.log.Debug("history generated", zap.String("username", employees[i].Username), zap.Int("shifts", n))
	}
	g.log.Info("shift history generated", zap.Int("employees", res.Employees), zap.Int("shifts", res.Shifts))
	return res, nil
}

func (g *Generator) employeeHistory(ctx context.Context, emp *models.User, admins []models.User, start, today models.Date) (int, error) {
	allowed := emp.ShiftTypes()
	if len(allowed) == 0 {
		return 0, nil
	}

	lo, _ := schedule.RestWindow(start, g.minRest)
	_, hi := schedule.RestWindow(today, g.minRest)
	taken, err := g.store.ListShifts(ctx, store.ShiftFilter{Username: emp.Username, From: &lo, To: &hi})
	if err != nil {
		return 0, fmt.Errorf("list shifts of %s: %w", emp.Username, err)
	}

	var batch []models.Shift
	add := func(date models.Date) error {
		sh := g.candidate(emp, allowed, admins, date)
		from, to, err := schedule.ShiftInterval(sh)
		if err != nil {
			return err
		}
		conflicts, err := schedule.CheckRest(from, to, taken, g.minRest)
		if err != nil {
			return err
		}
		if len(conflicts) == 0 {
			taken = append(taken, *sh)
			batch = append(batch, *sh)
		}
		return nil
	}

weeks:
	for week := start; week.Before(today.Time); week = week.AddDays(7) {
		picked := g.rng.Perm(7)[:g.rng.IntN(7)+1]
		slices.Sort(picked)
		for _, d := range picked {
			date := week.AddDays(d)
			if date.After(today.Time) {
				continue
			}
			if err := add(date); err != nil {
				return 0, err
			}
			if len(batch) >= maxShiftsPerEmployee {
				break weeks
			}
		}
	}

	span := int(today.Sub(start.Time).Hours()/24) + 1
	for attempts := 0; len(batch) < minShiftsPerEmployee && attempts < minShiftsPerEmployee*20; attempts++ {
		if err := add(start.AddDays(g.rng.IntN(span))); err != nil {
			return 0, err
		}
	}

	if err := g.store.CreateShifts(ctx, batch); err != nil {
		return 0, fmt.Errorf("store shifts of %s: %w", emp.Username, err)
	}
	return len(batch), nil
}

func (g *Generator) candidate(emp *models.User, allowed []models.ShiftType, admins []models.User, date models.Date) *models.Shift {
	t := allowed[g.rng.IntN(len(allowed))]
	def, _ := schedule.Lookup(t)

	actualStart := g.jitter(def.Start)
	actualEnd := g.jitter(def.End)

	sh := &models.Shift{
		ID:                uuid.NewString(),
		Date:              date,
		Type:              t,
		PlannedStart:      def.Start,
		PlannedEnd:        def.End,
		ActualStart:       &actualStart,
		ActualEnd:         &actualEnd,
		AssignedEmployees: []string{emp.Username},
		Status:            models.ShiftApproved,
		CreatedBy:         "seed",
	}
	if len(admins) > 0 {
		admin := admins[g.rng.IntN(len(admins))].Username
		sh.AssignedAdmin = &admin
	}
	return sh
}

func (g *Generator) jitter(clock string) string {
	c, err := schedule.ParseClock(clock)
	if err != nil {
		return clock
	}
	offset := time.Duration(g.rng.IntN(2*jitterMinutes+1)-jitterMinutes) * time.Minute
	return c.Add(offset).String()
}
