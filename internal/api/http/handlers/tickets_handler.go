package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		Subject:        req.Subject,
		Description:    req.Description,
		Category:       domain.Category(req.Category),
		Priority:       domain.TicketPriority(req.Priority),
		RequesterEmail: req.RequesterEmail,
		Department:     req.Department,
		SubDepartment:  req.SubDepartment,
	}, principal.Email(), principal.Role())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(withWarnings(dto.NewTicketResponse(res.Value), res.Warnings))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	patch := service.TicketPatch{
		Subject:          req.Subject,
		Description:      req.Description,
		AssignedTo:       req.AssignedTo,
		Department:       req.Department,
		SubDepartment:    req.SubDepartment,
		Rating:           req.Rating,
		EscalationReason: req.EscalationReason,
		SLAViolated:      req.SLAViolated,
	}
	if req.Category != nil {
		category := domain.Category(*req.Category)
		patch.Category = &category
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		patch.Status = &status
	}

	res, err := h.service.Update(c.UserContext(), c.Params("id"), patch, principal.Email())
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(dto.NewTicketResponse(res.Value), res.Warnings))
}

// EscalateTicket POST /tickets/:id/escalate.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.EscalateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Escalate(c.UserContext(), c.Params("id"), req.Reason, req.Description, req.Timeline, principal.Email())
	if err != nil {
		return err
	}
	return c.JSON(withWarnings(dto.NewTicketResponse(res.Value), res.Warnings))
}

// ListEscalations GET /tickets/:id/escalations.
func (h *TicketsHandler) ListEscalations(c *fiber.Ctx) error {
	items, err := h.service.ListEscalations(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.EscalationResponse, 0, len(items))
	for _, e := range items {
		out = append(out, dto.NewEscalationResponse(e))
	}
	return c.JSON(fiber.Map{"data": out})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.AddChatMessage(c.UserContext(), c.Params("id"), service.ChatMessageInput{
		Sender:     principal.Email(),
		SenderRole: principal.Role(),
		Message:    req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(withWarnings(dto.NewChatMessageResponse(*res.Value), res.Warnings))
}
