// Package store defines the persistence contract shared by the JSON file
// store and the SQL database store.
package store

import (
	"context"
	"errors"
	"slices"

	"shiftplan/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Store interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, username string) error
	CountUsers(ctx context.Context) (int, error)

	GetShift(ctx context.Context, id string) (*models.Shift, error)
	ListShifts(ctx context.Context, filter ShiftFilter) ([]models.Shift, error)
	CreateShift(ctx context.Context, s *models.Shift) error
	// CreateShifts inserts a batch in one write; any duplicate id fails the
	// whole batch.
	CreateShifts(ctx context.Context, shifts []models.Shift) error
	UpdateShift(ctx context.Context, s *models.Shift) error
	CountShifts(ctx context.Context) (int, error)

	CreatePayrollEntry(ctx context.Context, e *models.PayrollEntry) error
	ListPayrollEntries(ctx context.Context, filter PayrollEntryFilter) ([]models.PayrollEntry, error)

	WriteAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]models.AuditLog, error)

	Close() error
}

type UserFilter struct {
	Roles []models.Role
}

func (f UserFilter) Match(u *models.User) bool {
	return len(f.Roles) == 0 || slices.Contains(f.Roles, u.Role)
}

// ShiftFilter narrows shift listings. Zero fields do not filter; date bounds
// are inclusive.
type ShiftFilter struct {
	Username string
	From     *models.Date
	To       *models.Date
	Statuses []models.ShiftStatus
	Types    []models.ShiftType
}

func (f ShiftFilter) Match(s *models.Shift) bool {
	if f.Username != "" && !s.HasEmployee(f.Username) {
		return false
	}
	if f.From != nil && s.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && s.Date.After(f.To.Time) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, s.Status) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, s.Type) {
		return false
	}
	return true
}

type PayrollEntryFilter struct {
	Username string
	From     *models.Date
	To       *models.Date
}

func (f PayrollEntryFilter) Match(e *models.PayrollEntry) bool {
	if f.Username != "" && e.Username != f.Username {
		return false
	}
	if f.From != nil && e.Date.Before(f.From.Time) {
		return false
	}
	if f.To != nil && e.Date.After(f.To.Time) {
		return false
	}
	return true
}

type AuditFilter struct {
	EntityType string
	EntityID   string
	Actor      string
	// Limit caps the result; zero means no cap.
	Limit int
}

func (f AuditFilter) Match(l *models.AuditLog) bool {
	if f.EntityType != "" && l.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && l.EntityID != f.EntityID {
		return false
	}
	if f.Actor != "" && l.Actor != f.Actor {
		return false
	}
	return true
}

// SortShifts orders shifts newest date first, then by planned start.
func SortShifts(shifts []models.Shift) {
	slices.SortStableFunc(shifts, func(a, b models.Shift) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		if a.PlannedStart != b.PlannedStart {
			if a.PlannedStart < b.PlannedStart {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
