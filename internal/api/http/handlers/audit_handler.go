package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AuditHandler exposes a ticket's audit trail.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// List GET /tickets/:id/audit?filter=&limit=.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.Query(c.UserContext(), c.Params("id"), domain.AuditDateFilter(c.Query("filter")), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	out := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewAuditLogResponse(e))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Stats GET /tickets/:id/audit/stats.
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuditStatsResponse{
		Total:      stats.Total,
		Today:      stats.Today,
		Last7Days:  stats.Last7Days,
		Last30Days: stats.Last30Days,
		ByAction:   stats.ByAction,
	}})
}
