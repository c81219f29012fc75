package seed

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

const demoPayrollMonths = 6

// demoEntryID is stable per key so repeated runs hit ErrConflict.
func demoEntryID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("shiftplan/demo_payroll/"+key)).String()
}

// GeneratePayroll adds manual payroll entries for every employee and admin:
// one per month for the last six months and one for January 1st of last
// year. Running it again only fills in what is missing.
func (g *Generator) GeneratePayroll(ctx context.Context, actor string) (int, error) {
	list, err := g.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee, models.RoleAdmin}})
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	today := models.DateOf(g.now())
	firstOfMonth := models.NewDate(today.Year(), today.Month(), 1)
	lastMonth := firstOfMonth.AddDays(-1)
	lastMonth = models.NewDate(lastMonth.Year(), lastMonth.Month(), 1)
	lastYear := models.NewDate(today.Year()-1, 1, 1)

	created := 0
	for _, u := range list {
		entries := make([]models.PayrollEntry, 0, demoPayrollMonths+1)
		for i := range demoPayrollMonths {
			date := lastMonth.AddDays(-30 * i)
			entries = append(entries, models.PayrollEntry{
				ID:          demoEntryID(fmt.Sprintf("month_%d_%s", i+1, u.Username)),
				Username:    u.Username,
				Date:        date,
				Amount:      g.amount(500, 2000),
				Description: fmt.Sprintf("Demo payroll %s", date.Format("January 2006")),
				CreatedBy:   actor,
			})
		}
		entries = append(entries, models.PayrollEntry{
			ID:          demoEntryID("last_year_" + u.Username),
			Username:    u.Username,
			Date:        lastYear,
			Amount:      g.amount(8000, 25000),
			Description: fmt.Sprintf("Demo payroll %d", lastYear.Year()),
			CreatedBy:   actor,
		})

		for i := range entries {
			err := g.store.CreatePayrollEntry(ctx, &entries[i])
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			if err != nil {
				return created, fmt.Errorf("create payroll entry for %s: %w", u.Username, err)
			}
			created++
		}
	}
	g.log.Info("demo payroll entries generated", zap.Int("entries", created))
	return created, nil
}

func (g *Generator) amount(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))*100) / 100
}
