package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/realtime"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const keepAliveInterval = 15 * time.Second

// StreamHandler pushes new chat messages to the browser as server-sent events.
type StreamHandler struct {
	tickets  *service.TicketService
	registry *realtime.Registry
	logger   *zap.Logger
}

// NewStreamHandler constructs handler.
func NewStreamHandler(tickets *service.TicketService, registry *realtime.Registry, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{tickets: tickets, registry: registry, logger: observability.OrNop(logger).Named("stream")}
}

// Messages GET /tickets/:id/messages/stream. A newer stream for the same ticket ends this one.
func (h *StreamHandler) Messages(c *fiber.Ctx) error {
	ticketID := strings.Clone(c.Params("id"))
	if _, err := h.tickets.Get(c.UserContext(), ticketID); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		incoming := make(chan domain.ChatMessage)
		handle, err := h.registry.Subscribe(ctx, ticketID, func(msg domain.ChatMessage) {
			select {
			case incoming <- msg:
			case <-ctx.Done():
			}
		})
		if err != nil {
			h.logger.Warn("subscribe failed", zap.String("ticket_id", ticketID), zap.Error(err))
			fmt.Fprintf(w, "event: error\ndata: %q\n\n", "subscription unavailable")
			_ = w.Flush()
			return
		}
		defer h.registry.Release(handle)

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-handle.Done():
				return
			case msg := <-incoming:
				payload, err := json.Marshal(dto.NewChatMessageResponse(msg))
				if err != nil {
					h.logger.Error("encode chat message", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "id: %s\nevent: message\ndata: %s\n\n", msg.ID, payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}
