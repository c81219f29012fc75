package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
)

type AuditLogResponse struct {
	ID          string             `json:"id"`
	CreatedAt   string             `json:"created_at"`
	Actor       string             `json:"actor"`
	EntityType  string             `json:"entity_type"`
	EntityID    string             `json:"entity_id"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	BeforeData  string             `json:"before_data"`
	AfterData   string             `json:"after_data"`
}

// GET /api/admin/audit-logs?entity_type=shift&entity_id=...&actor=admin1&limit=100
func ListAuditLogsHandler(r *Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := store.AuditFilter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			Actor:      c.Query("actor"),
			Limit:      200,
		}
		if l := c.Query("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive number")
			}
			filter.Limit = n
		}

		logs, err := r.List(c.UserContext(), filter)
		if err != nil {
			return err
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				Actor:       l.Actor,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}
		return c.JSON(resp)
	}
}
