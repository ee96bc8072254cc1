package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/gateway"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// EventSink delivers lifecycle events to external channels.
type EventSink interface {
	Dispatch(ctx context.Context, ev events.Event) gateway.Result
}

var gatewayEvents = []events.EventType{
	events.EventTicketCreated,
	events.EventTicketUpdated,
	events.EventTicketEscalated,
	events.EventTicketMessage,
}

// StartNotificationWorker subscribes sink to every lifecycle event. Delivery failures
// are returned to the publisher so they surface as warnings on the triggering operation.
func StartNotificationWorker(dispatcher events.Dispatcher, sink EventSink, logger *zap.Logger) {
	if dispatcher == nil || sink == nil {
		return
	}
	logger = observability.OrNop(logger).Named("notification_worker")
	for _, eventType := range gatewayEvents {
		dispatcher.Subscribe(eventType, func(ctx context.Context, ev events.Event) error {
			result := sink.Dispatch(ctx, ev)
			logger.Debug("event dispatched",
				zap.String("event_type", string(ev.Type)),
				zap.String("ticket_id", ev.TicketID),
				zap.Strings("dm_sent", result.DMSent),
				zap.Bool("webhook_sent", result.WebhookSent),
				zap.Int("failures", len(result.Errors)),
			)
			return errors.Join(result.Errors...)
		})
	}
}
