// Package jsonstore keeps all records in indented JSON files inside one data
// directory. Files are loaded once and rewritten atomically on each change.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

const (
	usersFile   = "users.json"
	shiftsFile  = "shifts.json"
	payrollFile = "payroll.json"
	auditFile   = "audit.json"
)

type Store struct {
	dir string
	now func() time.Time

	mu      sync.RWMutex
	users   map[string]models.User
	shifts  map[string]models.Shift
	entries map[string]models.PayrollEntry
	audit   []models.AuditLog
}

var _ store.Store = (*Store)(nil)

// Open loads dir, creating it and any missing file.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		dir:     dir,
		now:     time.Now,
		users:   make(map[string]models.User),
		shifts:  make(map[string]models.Shift),
		entries: make(map[string]models.PayrollEntry),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) load() error {
	if err := readJSON(filepath.Join(s.dir, usersFile), &s.users); err != nil {
		return err
	}
	for name, u := range s.users {
		if u.Username == "" {
			u.Username = name
			s.users[name] = u
		}
	}

	legacy := make(map[string]legacyShift)
	if err := readJSON(filepath.Join(s.dir, shiftsFile), &legacy); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(s.dir, payrollFile), &s.entries); err != nil {
		return err
	}
	if err := readJSON(filepath.Join(s.dir, auditFile), &s.audit); err != nil {
		return err
	}

	migrated := false
	for id, ls := range legacy {
		if ls.ID == "" {
			ls.ID = id
		}
		if ls.Type == manualPayrollType {
			s.entries[ls.ID] = ls.payrollEntry()
			migrated = true
			continue
		}
		if ls.Approved && ls.Status != models.ShiftApproved {
			ls.Status = models.ShiftApproved
		}
		s.shifts[ls.ID] = ls.Shift
	}
	if migrated {
		if err := s.persistEntries(); err != nil {
			return err
		}
		return s.persistShifts()
	}
	return nil
}

// -------------------------
// Users
// -------------------------

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if filter.Match(&u) {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b models.User) int {
		if a.Username < b.Username {
			return -1
		}
		if a.Username > b.Username {
			return 1
		}
		return 0
	})
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return store.ErrConflict
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.Username] = *u
	if err := s.persistUsers(); err != nil {
		delete(s.users, u.Username)
		return err
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.Username]
	if !ok {
		return store.ErrNotFound
	}
	u.UpdatedAt = s.now()
	s.users[u.Username] = *u
	if err := s.persistUsers(); err != nil {
		s.users[u.Username] = old
		return err
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.users, username)
	if err := s.persistUsers(); err != nil {
		s.users[username] = old
		return err
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// -------------------------
// Shifts
// -------------------------

func (s *Store) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shifts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	sh = cloneShift(sh)
	return &sh, nil
}

func (s *Store) ListShifts(ctx context.Context, filter store.ShiftFilter) ([]models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shifts := make([]models.Shift, 0)
	for _, sh := range s.shifts {
		if filter.Match(&sh) {
			shifts = append(shifts, cloneShift(sh))
		}
	}
	store.SortShifts(shifts)
	return shifts, nil
}

func (s *Store) CreateShift(ctx context.Context, sh *models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[sh.ID]; ok {
		return store.ErrConflict
	}
	now := s.now()
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now
	s.shifts[sh.ID] = cloneShift(*sh)
	if err := s.persistShifts(); err != nil {
		delete(s.shifts, sh.ID)
		return err
	}
	return nil
}

func (s *Store) CreateShifts(ctx context.Context, shifts []models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(shifts))
	for i := range shifts {
		id := shifts[i].ID
		if _, ok := s.shifts[id]; ok || seen[id] {
			return store.ErrConflict
		}
		seen[id] = true
	}
	now := s.now()
	for i := range shifts {
		sh := &shifts[i]
		if sh.CreatedAt.IsZero() {
			sh.CreatedAt = now
		}
		sh.UpdatedAt = now
		s.shifts[sh.ID] = cloneShift(*sh)
	}
	if err := s.persistShifts(); err != nil {
		for _, sh := range shifts {
			delete(s.shifts, sh.ID)
		}
		return err
	}
	return nil
}

func (s *Store) UpdateShift(ctx context.Context, sh *models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.shifts[sh.ID]
	if !ok {
		return store.ErrNotFound
	}
	sh.UpdatedAt = s.now()
	s.shifts[sh.ID] = cloneShift(*sh)
	if err := s.persistShifts(); err != nil {
		s.shifts[sh.ID] = old
		return err
	}
	return nil
}

func (s *Store) CountShifts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shifts), nil
}

// -------------------------
// Payroll entries
// -------------------------

func (s *Store) CreatePayrollEntry(ctx context.Context, e *models.PayrollEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return store.ErrConflict
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.entries[e.ID] = *e
	if err := s.persistEntries(); err != nil {
		delete(s.entries, e.ID)
		return err
	}
	return nil
}

func (s *Store) ListPayrollEntries(ctx context.Context, filter store.PayrollEntryFilter) ([]models.PayrollEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]models.PayrollEntry, 0)
	for _, e := range s.entries {
		if filter.Match(&e) {
			entries = append(entries, e)
		}
	}
	slices.SortStableFunc(entries, func(a, b models.PayrollEntry) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return entries, nil
}

// -------------------------
// Audit
// -------------------------

func (s *Store) WriteAuditLog(ctx context.Context, l *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	s.audit = append(s.audit, *l)
	if err := writeJSON(filepath.Join(s.dir, auditFile), s.audit); err != nil {
		s.audit = s.audit[:len(s.audit)-1]
		return err
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, filter store.AuditFilter) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]models.AuditLog, 0)
	for i := len(s.audit) - 1; i >= 0; i-- {
		l := s.audit[i]
		if !filter.Match(&l) {
			continue
		}
		logs = append(logs, l)
		if filter.Limit > 0 && len(logs) == filter.Limit {
			break
		}
	}
	return logs, nil
}

// -------------------------
// Files
// -------------------------

func (s *Store) persistUsers() error {
	return writeJSON(filepath.Join(s.dir, usersFile), s.users)
}

func (s *Store) persistShifts() error {
	return writeJSON(filepath.Join(s.dir, shiftsFile), s.shifts)
}

func (s *Store) persistEntries() error {
	return writeJSON(filepath.Join(s.dir, payrollFile), s.entries)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically so readers never see a half-written file.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func cloneShift(sh models.Shift) models.Shift {
	sh.AssignedEmployees = slices.Clone(sh.AssignedEmployees)
	if sh.ActualStart != nil {
		v := *sh.ActualStart
		sh.ActualStart = &v
	}
	if sh.ActualEnd != nil {
		v := *sh.ActualEnd
		sh.ActualEnd = &v
	}
	if sh.AssignedAdmin != nil {
		v := *sh.AssignedAdmin
		sh.AssignedAdmin = &v
	}
	return sh
}
