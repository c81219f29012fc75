// Package database is the SQL implementation of store.Store, backed by GORM
// with the postgres or sqlite driver.
package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects with the named driver and migrates the schema.
func Open(driver, dsn string, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Shift{},
		&models.PayrollEntry{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if log != nil {
		log.Info("database ready", zap.String("driver", driver))
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	}
	return err
}

// -------------------------
// Users
// -------------------------

func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if len(filter.Roles) > 0 {
		q = q.Where("role IN ?", filter.Roles)
	}
	var users []models.User
	if err := q.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", u.Username).
		Select("*").Omit("created_at").
		Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "username = ?", username)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return int(n), err
}

// -------------------------
// Shifts
// -------------------------

func (s *Store) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	var sh models.Shift
	if err := s.db.WithContext(ctx).First(&sh, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sh, nil
}

// ListShifts narrows by date, status and type in SQL. Employee membership is
// a serialised column and is checked in Go.
func (s *Store) ListShifts(ctx context.Context, filter store.ShiftFilter) ([]models.Shift, error) {
	q := s.db.WithContext(ctx).Model(&models.Shift{})
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Types) > 0 {
		q = q.Where("type IN ?", filter.Types)
	}
	if filter.Username != "" {
		q = q.Where("assigned_employees LIKE ?", "%\""+filter.Username+"\"%")
	}

	var rows []models.Shift
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	shifts := rows[:0]
	for i := range rows {
		if filter.Match(&rows[i]) {
			shifts = append(shifts, rows[i])
		}
	}
	store.SortShifts(shifts)
	return shifts, nil
}

func (s *Store) CreateShift(ctx context.Context, sh *models.Shift) error {
	return translate(s.db.WithContext(ctx).Create(sh).Error)
}

func (s *Store) CreateShifts(ctx context.Context, shifts []models.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).CreateInBatches(shifts, 200).Error)
}

func (s *Store) UpdateShift(ctx context.Context, sh *models.Shift) error {
	res := s.db.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ?", sh.ID).
		Select("*").Omit("created_at").
		Updates(sh)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountShifts(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Shift{}).Count(&n).Error
	return int(n), err
}

// -------------------------
// Payroll entries
// -------------------------

func (s *Store) CreatePayrollEntry(ctx context.Context, e *models.PayrollEntry) error {
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

func (s *Store) ListPayrollEntries(ctx context.Context, filter store.PayrollEntryFilter) ([]models.PayrollEntry, error) {
	q := s.db.WithContext(ctx).Model(&models.PayrollEntry{})
	if filter.Username != "" {
		q = q.Where("username = ?", filter.Username)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	var entries []models.PayrollEntry
	if err := q.Order("date desc").Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// -------------------------
// Audit
// -------------------------

func (s *Store) WriteAuditLog(ctx context.Context, l *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, filter store.AuditFilter) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Actor != "" {
		q = q.Where("actor = ?", filter.Actor)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
