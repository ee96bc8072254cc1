package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/gateway"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EventSender delivers one event to the chat provider.
type EventSender interface {
	Dispatch(ctx context.Context, ev events.Event) gateway.Result
}

// DispatchHandler relays notification requests from other services to the gateway.
// Responses use the flat {"error": "..."} body rather than the API error envelope.
type DispatchHandler struct {
	sender EventSender
	logger *zap.Logger
	now    func() time.Time
}

// NewDispatchHandler constructs handler.
func NewDispatchHandler(sender EventSender, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{sender: sender, logger: observability.OrNop(logger).Named("dispatch"), now: time.Now}
}

// Dispatch POST /notifications/dispatch.
func (h *DispatchHandler) Dispatch(c *fiber.Ctx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("dispatch panicked", zap.Any("panic", r))
			err = c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprint(r)})
		}
	}()

	var req dto.DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	if err := dto.Validate(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": apperrors.ToDomainError(err).Message})
	}

	ev := req.ToEvent(uuid.NewString(), h.now().UTC())
	result := h.sender.Dispatch(c.UserContext(), ev)
	for _, failure := range result.Errors {
		h.logger.Warn("dispatch action failed",
			zap.String("ticket_id", ev.TicketID),
			zap.String("event_type", string(ev.Type)),
			zap.Error(failure),
		)
	}

	dmSent := result.DMSent
	if dmSent == nil {
		dmSent = []string{}
	}
	return c.JSON(dto.DispatchResponse{
		Success: true,
		Results: dto.DispatchResults{DMSent: dmSent, WebhookSent: result.WebhookSent},
	})
}
