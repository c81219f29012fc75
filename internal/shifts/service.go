package shifts

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftplan/internal/apperr"
	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/schedule"
	"shiftplan/internal/store"
)

type CreateInput struct {
	Date          string             `json:"date"`
	Type          models.ShiftType   `json:"shift_type"`
	Employees     []string           `json:"employees"`
	PlannedStart  string             `json:"planned_start"`
	PlannedEnd    string             `json:"planned_end"`
	AssignedAdmin *string            `json:"assigned_admin"`
	Status        models.ShiftStatus `json:"status"`
}

// ApproveInput is empty for a full approval; partial approvals pass the
// actually worked clock times.
type ApproveInput struct {
	ActualStart *string `json:"actual_start"`
	ActualEnd   *string `json:"actual_end"`
}

// RestViolation lists the shifts that leave an employee too little rest.
type RestViolation struct {
	Username  string              `json:"username"`
	Name      string              `json:"name"`
	Conflicts []schedule.Conflict `json:"conflicts"`
}

type Service struct {
	store   store.Store
	audit   *audit.Recorder
	log     *zap.Logger
	minRest time.Duration
	now     func() time.Time

	// mu serialises read-check-write sequences on shifts.
	mu sync.Mutex
}

func NewService(st store.Store, rec *audit.Recorder, log *zap.Logger, minRest time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if minRest <= 0 {
		minRest = schedule.DefaultMinRest
	}
	return &Service{store: st, audit: rec, log: log, minRest: minRest, now: time.Now}
}

// -------------------------
// Create
// -------------------------

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*models.Shift, error) {
	date, err := models.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}

	employees, err := s.loadEmployees(ctx, in.Employees)
	if err != nil {
		return nil, err
	}

	if !schedule.Valid(in.Type) {
		return nil, apperr.Invalid("unknown shift type %q", in.Type)
	}
	allowed := schedule.AllowedTypes(employees...)
	if !slices.Contains(allowed, in.Type) {
		return nil, apperr.Invalid("shift type %q is not a primary or secondary shift of the selected employees", in.Type).
			WithDetails(map[string]any{"allowed": allowed})
	}

	def, _ := schedule.Lookup(in.Type)
	start := def.Start
	if in.PlannedStart != "" {
		if start, err = schedule.NormalizeClock(in.PlannedStart); err != nil {
			return nil, apperr.Invalid("planned_start: %s", err.Error())
		}
	}
	var end string
	if in.PlannedEnd != "" {
		if end, err = schedule.NormalizeClock(in.PlannedEnd); err != nil {
			return nil, apperr.Invalid("planned_end: %s", err.Error())
		}
	} else if end, err = schedule.DefaultEnd(in.Type, start); err != nil {
		return nil, err
	}

	var assignedAdmin *string
	if in.AssignedAdmin != nil && strings.TrimSpace(*in.AssignedAdmin) != "" {
		name := strings.TrimSpace(*in.AssignedAdmin)
		admin, err := s.store.GetUser(ctx, name)
		if errors.Is(err, store.ErrNotFound) || (err == nil && admin.Role != models.RoleAdmin) {
			return nil, apperr.Invalid("assigned admin %q is not an admin", name)
		}
		if err != nil {
			return nil, fmt.Errorf("load admin: %w", err)
		}
		assignedAdmin = &name
	}

	status := in.Status
	if status == "" {
		status = models.ShiftAccepted
	}
	switch status {
	case models.ShiftPending, models.ShiftAccepted, models.ShiftApproved:
	default:
		return nil, apperr.Invalid("initial status must be pending, accepted or approved")
	}

	shift := &models.Shift{
		ID:                uuid.NewString(),
		Date:              date,
		Type:              in.Type,
		PlannedStart:      start,
		PlannedEnd:        end,
		AssignedEmployees: usernames(employees),
		AssignedAdmin:     assignedAdmin,
		Status:            status,
		CreatedBy:         actor,
	}
	if status == models.ShiftApproved {
		shift.ActualStart = &start
		shift.ActualEnd = &end
	}

	from, to, err := schedule.Interval(date, start, end)
	if err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	violations, err := s.checkRest(ctx, employees, date, from, to)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		names := make([]string, 0, len(violations))
		for _, v := range violations {
			names = append(names, v.Name)
		}
		return nil, apperr.New(apperr.KindUnprocessable,
			"less than %s rest between shifts for: %s", formatRest(s.minRest), strings.Join(names, ", ")).
			WithDetails(map[string]any{"violations": violations})
	}

	if err := s.store.CreateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("create shift: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityShift,
		EntityID:    shift.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%s shift on %s for %s", shift.Type, shift.Date, strings.Join(shift.AssignedEmployees, ", ")),
		After:       shift,
	})
	return shift, nil
}

func (s *Service) loadEmployees(ctx context.Context, names []string) ([]*models.User, error) {
	seen := make(map[string]bool, len(names))
	var employees []*models.User
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		u, err := s.store.GetUser(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Invalid("employee %q does not exist", name)
		}
		if err != nil {
			return nil, fmt.Errorf("load employee: %w", err)
		}
		if u.Role != models.RoleEmployee {
			return nil, apperr.Invalid("%q is not an employee", name)
		}
		employees = append(employees, u)
	}
	if len(employees) == 0 {
		return nil, apperr.Invalid("assign at least one employee")
	}
	return employees, nil
}

func (s *Service) checkRest(ctx context.Context, employees []*models.User, date models.Date, from, to time.Time) ([]RestViolation, error) {
	lo, hi := schedule.RestWindow(date, s.minRest)
	var violations []RestViolation
	for _, emp := range employees {
		existing, err := s.store.ListShifts(ctx, store.ShiftFilter{Username: emp.Username, From: &lo, To: &hi})
		if err != nil {
			return nil, fmt.Errorf("list shifts of %s: %w", emp.Username, err)
		}
		conflicts, err := schedule.CheckRest(from, to, existing, s.minRest)
		if err != nil {
			return nil, fmt.Errorf("check rest for %s: %w", emp.Username, err)
		}
		if len(conflicts) > 0 {
			violations = append(violations, RestViolation{Username: emp.Username, Name: emp.Name, Conflicts: conflicts})
		}
	}
	return violations, nil
}

func formatRest(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return d.String()
}

func usernames(users []*models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

// -------------------------
// Approval
// -------------------------

// PendingApproval returns shifts waiting on an employee or an admin.
func (s *Service) PendingApproval(ctx context.Context) ([]models.Shift, error) {
	return s.store.ListShifts(ctx, store.ShiftFilter{
		Statuses: []models.ShiftStatus{models.ShiftPending, models.ShiftAccepted},
	})
}

func (s *Service) Approve(ctx context.Context, actor, id string, in ApproveInput) (*models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if shift.Status != models.ShiftPending && shift.Status != models.ShiftAccepted {
		return nil, apperr.Conflict("shift is %s and cannot be approved", shift.Status)
	}
	before := *shift

	start, end := shift.PlannedStart, shift.PlannedEnd
	if in.ActualStart != nil && *in.ActualStart != "" {
		if start, err = schedule.NormalizeClock(*in.ActualStart); err != nil {
			return nil, apperr.Invalid("actual_start: %s", err.Error())
		}
	}
	if in.ActualEnd != nil && *in.ActualEnd != "" {
		if end, err = schedule.NormalizeClock(*in.ActualEnd); err != nil {
			return nil, apperr.Invalid("actual_end: %s", err.Error())
		}
	}

	shift.ActualStart = &start
	shift.ActualEnd = &end
	shift.Status = models.ShiftApproved
	if err := s.store.UpdateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("approve shift: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       actor,
		EntityType:  audit.EntityShift,
		EntityID:    shift.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("approved with %s-%s", start, end),
		Before:      before,
		After:       shift,
	})
	return shift, nil
}

// -------------------------
// Employee responses
// -------------------------

func (s *Service) Accept(ctx context.Context, username, id string) (*models.Shift, error) {
	return s.respond(ctx, username, id, models.ShiftAccepted)
}

func (s *Service) Decline(ctx context.Context, username, id string) (*models.Shift, error) {
	return s.respond(ctx, username, id, models.ShiftDeclined)
}

func (s *Service) respond(ctx context.Context, username, id string, status models.ShiftStatus) (*models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shift.HasEmployee(username) {
		return nil, apperr.NotFound("shift %q not found", id)
	}
	if shift.Status != models.ShiftPending {
		return nil, apperr.Conflict("shift is already %s", shift.Status)
	}
	before := *shift

	shift.Status = status
	if err := s.store.UpdateShift(ctx, shift); err != nil {
		return nil, fmt.Errorf("update shift: %w", err)
	}

	s.audit.Record(ctx, audit.LogOptions{
		Actor:       username,
		EntityType:  audit.EntityShift,
		EntityID:    shift.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("shift %s by %s", status, username),
		Before:      before,
		After:       shift,
	})
	return shift, nil
}

// -------------------------
// Queries
// -------------------------

func (s *Service) Get(ctx context.Context, id string) (*models.Shift, error) {
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.store.GetShift(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("shift %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load shift: %w", err)
	}
	return shift, nil
}

func (s *Service) List(ctx context.Context, filter store.ShiftFilter) ([]models.Shift, error) {
	return s.store.ListShifts(ctx, filter)
}

// ForEmployee returns all shifts of username and, separately, those still
// waiting for the employee's answer.
func (s *Service) ForEmployee(ctx context.Context, username string) (all, pending []models.Shift, err error) {
	all, err = s.store.ListShifts(ctx, store.ShiftFilter{Username: username})
	if err != nil {
		return nil, nil, err
	}
	pending = make([]models.Shift, 0)
	for _, sh := range all {
		if sh.Status == models.ShiftPending {
			pending = append(pending, sh)
		}
	}
	return all, pending, nil
}

// UserLookup resolves the signed-in user for views priced at their rate.
type UserLookup interface {
	Get(ctx context.Context, username string) (*models.User, error)
}
