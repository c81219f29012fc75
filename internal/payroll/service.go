package payroll

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

// fanOut caps concurrent per-user calculations.
const fanOut = 8

type EntryInput struct {
	Username    string  `json:"username"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type Service struct {
	store store.Store
	audit *audit.Recorder
	log   *zap.Logger
	now   func() time.Time
}

func NewService(st store.Store, rec *audit.Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, audit: rec, log: log, now: time.Now}
}

func (s *Service) ForUser(ctx context.Context, user *models.User, from, to models.Date) (*Summary, error) {
	shifts, err := s.store.ListShifts(ctx, store.ShiftFilter{
		Username: user.Username,
		From:     &from,
		To:       &to,
		Statuses: []models.ShiftStatus{models.ShiftApproved},
	})
	if err != nil {
		return nil, fmt.Errorf("list shifts of %s: %w", user.Username, err)
	}
	entries, err := s.store.ListPayrollEntries(ctx, store.PayrollEntryFilter{Username: user.Username, From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list payroll entries of %s: %w", user.Username, err)
	}
	return Summarize(user, from, to, shifts, entries)
}

// ForUsername resolves username to a payable user first.
func (s *Service) ForUsername(ctx context.Context, username string, from, to models.Date) (*Summary, error) {
	user, err := s.payableUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.ForUser(ctx, user, from, to)
}

// ForUsers calculates every user concurrently and drops users without hours
// or pay. The result keeps the input order.
func (s *Service) ForUsers(ctx context.Context, users []models.User, from, to models.Date) ([]Summary, error) {
	results := make([]*Summary, len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOut)
	for i := range users {
		g.Go(func() error {
			sum, err := s.ForUser(gctx, &users[i], from, to)
			if err != nil {
				return err
			}
			results[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(users))
	for _, r := range results {
		if r != nil && !r.Empty() {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ForAll runs ForUsers over every employee and admin.
func (s *Service) ForAll(ctx context.Context, from, to models.Date) ([]Summary, error) {
	users, err := s.store.ListUsers(ctx, store.UserFilter{Roles: []models.Role{models.RoleEmployee, models.RoleAdmin}})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.ForUsers(ctx, users, from, to)
}

// Timesheet prices username's own period.
func (s *Service) Timesheet(ctx context.Context, username string, period Period, from, to string) (*Summary, error) {
	f, t, err := ResolvePeriod(period, s.now(), from, to)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user %q not found", username)
	}
	if err != nil {
		return nil, err
	}
	return s.ForUser(ctx, user, f, t)
}

// -------------------------
// Manual entries
// -------------------------

func (s *Service) AddEntry(ctx context.Context, actor string, in EntryInput) (*models.PayrollEntry, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperr.Invalid("description is required")
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, apperr.Invalid("amount must be greater than zero")
	}
	date := models.DateOf(s.now())
	if in.Date != "" {
		d, err := models.ParseDate(in.Date)
		if err != nil {
			return nil, apperr.Invalid("%s", err.Error())
		}
		date = d
	}
	user, err := s.payableUser(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}

	entry := &models.PayrollEntry{
		ID:          uuid.NewString(),
		Username:    user.Username,
		Date:        date,
		Amount:      round2(in.Amount),
		Description: in.Description,
		CreatedBy:   actor,
	}
	if err := s.store.CreatePayrollEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create payroll entry: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityPayrollEntry,
		EntityID:    entry.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%.2f for %s: %s", entry.Amount, entry.Username, entry.Description),
		After:       entry,
	})
	return entry, nil
}

func (s *Service) ListEntries(ctx context.Context, filter store.PayrollEntryFilter) ([]models.PayrollEntry, error) {
	return s.store.ListPayrollEntries(ctx, filter)
}

func (s *Service) payableUser(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, apperr.Invalid("username is required")
	}
	user, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user %q not found", username)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Payable() {
		return nil, apperr.Invalid("%s is not an employee or admin", username)
	}
	return user, nil
}
