package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/auth"
	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

type CreateInput struct {
	Username       string            `json:"username"`
	Password       string            `json:"password"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Role           models.Role       `json:"role"`
	PrimaryShift   models.ShiftType  `json:"primary_shift"`
	SecondaryShift *models.ShiftType `json:"secondary_shift"`
	HourlyRate     float64           `json:"hourly_rate"`
}

// UpdateInput carries the fields to change; nil fields are kept.
type UpdateInput struct {
	Name           *string           `json:"name"`
	Email          *string           `json:"email"`
	Role           *models.Role      `json:"role"`
	PrimaryShift   *models.ShiftType `json:"primary_shift"`
	SecondaryShift *models.ShiftType `json:"secondary_shift"`
	ClearSecondary bool              `json:"clear_secondary"`
	HourlyRate     *float64          `json:"hourly_rate"`
	Password       *string           `json:"password"`
}

type Service struct {
	store store.Store
	audit *audit.Recorder
	log   *zap.Logger
}

func NewService(st store.Store, rec *audit.Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, audit: rec, log: log}
}

func (s *Service) List(ctx context.Context, roles ...models.Role) ([]models.User, error) {
	return s.store.ListUsers(ctx, store.UserFilter{Roles: roles})
}

func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user %q not found", username)
	}
	return u, err
}

// Create adds an admin or employee account. head_admin accounts only come
// from EnsureDefaults.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Username == "" || in.Password == "" || in.Name == "" || in.Email == "" {
		return nil, apperr.Invalid("username, password, name and email are required")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Invalid("password must be at least %d characters", auth.MinPasswordLength)
	}
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if err := checkManagedRole(in.Role); err != nil {
		return nil, err
	}
	if err := checkEmail(in.Email); err != nil {
		return nil, err
	}
	if in.SecondaryShift != nil && *in.SecondaryShift == "" {
		in.SecondaryShift = nil
	}
	if err := checkShifts(in.PrimaryShift, in.SecondaryShift); err != nil {
		return nil, err
	}
	if in.HourlyRate < 0 {
		return nil, apperr.Invalid("hourly rate cannot be negative")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:       in.Username,
		PasswordHash:   hash,
		Role:           in.Role,
		Name:           in.Name,
		Email:          in.Email,
		PrimaryShift:   in.PrimaryShift,
		SecondaryShift: in.SecondaryShift,
		HourlyRate:     in.HourlyRate,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.Conflict("username %q is already taken", in.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityUser,
		EntityID:    user.Username,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%s %s created", user.Role, user.Username),
		After:       user,
	})
	return user, nil
}

func (s *Service) Update(ctx context.Context, actor, username string, in UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleHeadAdmin {
		return nil, apperr.Forbidden("head_admin accounts cannot be changed here")
	}
	before := *user

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("name cannot be empty")
		}
		user.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*in.Email))
		if err := checkEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Role != nil {
		if err := checkManagedRole(*in.Role); err != nil {
			return nil, err
		}
		user.Role = *in.Role
	}
	if in.PrimaryShift != nil {
		user.PrimaryShift = *in.PrimaryShift
	}
	if in.ClearSecondary {
		user.SecondaryShift = nil
	} else if in.SecondaryShift != nil && *in.SecondaryShift != "" {
		secondary := *in.SecondaryShift
		user.SecondaryShift = &secondary
	}
	if err := checkShifts(user.PrimaryShift, user.SecondaryShift); err != nil {
		return nil, err
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			return nil, apperr.Invalid("hourly rate cannot be negative")
		}
		user.HourlyRate = *in.HourlyRate
	}
	if in.Password != nil {
		if len(*in.Password) < auth.MinPasswordLength {
			return nil, apperr.Invalid("password must be at least %d characters", auth.MinPasswordLength)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityUser,
		EntityID:    user.Username,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("user %s updated", user.Username),
		Before:      before,
		After:       user,
	})
	return user, nil
}

// Delete removes the account. Shifts keep the username so payroll history
// stays intact.
func (s *Service) Delete(ctx context.Context, actor, username string) error {
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if user.Role == models.RoleHeadAdmin {
		return apperr.Forbidden("head_admin accounts cannot be deleted")
	}
	if username == actor {
		return apperr.Forbidden("you cannot delete your own account")
	}
	if err := s.store.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityUser,
		EntityID:    username,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("user %s deleted", username),
		Before:      user,
	})
	return nil
}

func checkManagedRole(r models.Role) error {
	if r != models.RoleAdmin && r != models.RoleEmployee {
		return apperr.Invalid("role must be admin or employee")
	}
	return nil
}

func checkEmail(email string) error {
	if email == "" {
		return apperr.Invalid("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Invalid("email %q is not valid", email)
	}
	return nil
}

func checkShifts(primary models.ShiftType, secondary *models.ShiftType) error {
	if !schedule.Valid(primary) {
		return apperr.Invalid("primary shift %q is not a known shift type", primary)
	}
	if secondary == nil || *secondary == "" {
		return nil
	}
	if !schedule.IsCompatible(primary, *secondary) {
		return apperr.Invalid("secondary shift %q cannot be combined with %q", *secondary, primary).
			WithDetails(map[string]any{"allowed": schedule.Compatible(primary)})
	}
	return nil
}
