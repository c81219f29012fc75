package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

const (
	EntityUser         = "user"
	EntityShift        = "shift"
	EntityPayrollEntry = "payroll_entry"
)

type LogOptions struct {
	Actor       string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Recorder writes audit logs. A failed write is logged and never fails the
// operation being audited.
type Recorder struct {
	store store.Store
	log   *zap.Logger
}

func NewRecorder(st store.Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{store: st, log: log}
}

func (r *Recorder) Record(ctx context.Context, opts LogOptions) {
	if r == nil {
		return
	}
	entry := models.AuditLog{
		ID:          uuid.NewString(),
		Actor:       opts.Actor,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if err := r.store.WriteAuditLog(ctx, &entry); err != nil {
		r.log.Warn("audit log not written",
			zap.String("entity_type", opts.EntityType),
			zap.String("entity_id", opts.EntityID),
			zap.Error(err))
	}
}

func (r *Recorder) List(ctx context.Context, filter store.AuditFilter) ([]models.AuditLog, error) {
	return r.store.ListAuditLogs(ctx, filter)
}

// snapshot renders v as JSON, "null" when absent. Password hashes never
// reach the log.
func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	switch u := v.(type) {
	case *models.User:
		if u == nil {
			return "null"
		}
		redacted := *u
		redacted.PasswordHash = ""
		v = redacted
	case models.User:
		u.PasswordHash = ""
		v = u
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
