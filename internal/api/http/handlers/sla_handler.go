package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// SLAHandler manages SLA overrides.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// List GET /sla-configs.
func (h *SLAHandler) List(c *fiber.Ctx) error {
	items, err := h.service.ListConfigs(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.SLAConfigResponse, 0, len(items))
	for _, cfg := range items {
		out = append(out, dto.NewSLAConfigResponse(cfg))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Upsert PUT /sla-configs.
func (h *SLAHandler) Upsert(c *fiber.Ctx) error {
	var req dto.SLAConfigRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	saved, err := h.service.UpsertConfig(c.UserContext(), domain.SLAConfig{
		Category:        domain.Category(req.Category),
		Priority:        domain.TicketPriority(req.Priority),
		ResponseHours:   req.ResponseHours,
		ResolutionHours: req.ResolutionHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSLAConfigResponse(*saved)})
}
