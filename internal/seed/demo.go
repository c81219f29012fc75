package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

const demoPerStatus = 10

// GenerateOpen adds recent pending and accepted shifts so the approval
// queues have something in them. Candidates that would break the rest rule
// are skipped.
func (g *Generator) GenerateOpen(ctx context.Context) (int, error) {
	employees, err := g.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee}})
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	if len(employees) == 0 {
		return 0, nil
	}
	admins, err := g.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleAdmin}})
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}

	today := models.DateOf(g.now())
	created := 0
	for _, status := range []models.ShiftStatus{models.ShiftPending, models.ShiftAccepted} {
		made := 0
		for attempts := 0; made < demoPerStatus && attempts < demoPerStatus*10; attempts++ {
			emp := &employees[g.rng.IntN(len(employees))]
			allowed := emp.ShiftTypes()
			if len(allowed) == 0 {
				continue
			}
			date := today.AddDays(-g.rng.IntN(11))
			sh := g.candidate(emp, allowed, admins, date)
			sh.Status = status
			sh.ActualStart, sh.ActualEnd = nil, nil

			ok, err := g.fits(ctx, sh, emp.Username)
			if err != nil {
				return created, err
			}
			if !ok {
				continue
			}
			if err := g.store.CreateShift(ctx, sh); err != nil {
				return created, fmt.Errorf("create shift: %w", err)
			}
			made++
			created++
		}
	}
	g.log.Info("open demo shifts generated", zap.Int("shifts", created))
	return created, nil
}

func (g *Generator) fits(ctx context.Context, sh *models.Shift, username string) (bool, error) {
	lo, hi := schedule.RestWindow(sh.Date, g.minRest)
	existing, err := g.store.ListShifts(ctx, store.ShiftFilter{Username: username, From: &lo, To: &hi})
	if err != nil {
		return false, err
	}
	from, to, err := schedule.ShiftInterval(sh)
	if err != nil {
		return false, err
	}
	conflicts, err := schedule.CheckRest(from, to, existing, g.minRest)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
