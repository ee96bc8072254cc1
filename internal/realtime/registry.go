package realtime

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// ErrClosed is returned by Subscribe after the registry has been closed.
var ErrClosed = errors.New("realtime: registry closed")

// Handler receives chat messages for one ticket in transport order.
type Handler func(msg domain.ChatMessage)

// Stream is a live transport subscription for one ticket. Close may be called more than once.
type Stream interface {
	Messages() <-chan domain.ChatMessage
	Close() error
}

// Transport carries chat messages between publishers and subscribers.
type Transport interface {
	Subscribe(ctx context.Context, ticketID string) (Stream, error)
	Publish(ctx context.Context, msg domain.ChatMessage) error
}

// Handle identifies one registration. Done is closed once the registration ends,
// whether it was replaced, unsubscribed or the registry was closed.
type Handle struct {
	TicketID string
	stream   Stream
	cancel   context.CancelFunc
	done     chan struct{}
}

// Done reports when delivery to the handler has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Registry keeps at most one live subscription per ticket. Subscribing again for a
// ticket replaces the previous handle.
type Registry struct {
	transport Transport
	logger    *zap.Logger

	mu      sync.Mutex
	entries map[string]*Handle
	closed  bool
}

// NewRegistry creates an empty registry over transport.
func NewRegistry(transport Transport, logger *zap.Logger) *Registry {
	return &Registry{
		transport: transport,
		logger:    observability.OrNop(logger).Named("realtime"),
		entries:   make(map[string]*Handle),
	}
}

// Subscribe opens a stream for ticketID and delivers each message to handler until the
// handle is replaced, unsubscribed, ctx ends or the registry closes.
func (r *Registry) Subscribe(ctx context.Context, ticketID string, handler Handler) (*Handle, error) {
	if ticketID == "" {
		return nil, errors.New("realtime: ticket id is required")
	}
	if handler == nil {
		return nil, errors.New("realtime: handler is required")
	}

	stream, err := r.transport.Subscribe(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	deliverCtx, cancel := context.WithCancel(ctx)
	h := &Handle{TicketID: ticketID, stream: stream, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		_ = stream.Close()
		return nil, ErrClosed
	}
	previous := r.entries[ticketID]
	r.entries[ticketID] = h
	r.mu.Unlock()

	if previous != nil {
		r.logger.Debug("subscription replaced", zap.String("ticket_id", ticketID))
		r.release(previous)
	}

	go r.deliver(deliverCtx, h, handler)
	return h, nil
}

// Unsubscribe removes the subscription for ticketID and releases its stream. Missing
// entries are ignored.
func (r *Registry) Unsubscribe(ticketID string) {
	r.mu.Lock()
	h := r.entries[ticketID]
	delete(r.entries, ticketID)
	r.mu.Unlock()

	if h != nil {
		r.release(h)
	}
}

// Release ends h if it is still the current subscription for its ticket. A caller that
// was replaced does not remove its successor.
func (r *Registry) Release(h *Handle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	if r.entries[h.TicketID] == h {
		delete(r.entries, h.TicketID)
	}
	r.mu.Unlock()
	r.release(h)
}

// Active reports whether ticketID currently has a subscription.
func (r *Registry) Active(ticketID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[ticketID]
	return ok
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// PublishChatMessage hands a persisted message to the transport.
func (r *Registry) PublishChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	return r.transport.Publish(ctx, msg)
}

// Close releases every subscription. Later Subscribe calls fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*Handle)
	r.mu.Unlock()

	for _, h := range entries {
		r.release(h)
	}
	r.logger.Info("realtime registry closed", zap.Int("released", len(entries)))
}

func (r *Registry) release(h *Handle) {
	h.cancel()
	if err := h.stream.Close(); err != nil {
		r.logger.Warn("close stream", zap.String("ticket_id", h.TicketID), zap.Error(err))
	}
}

func (r *Registry) deliver(ctx context.Context, h *Handle, handler Handler) {
	defer close(h.done)
	defer r.Release(h)

	messages := h.stream.Messages()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			handler(msg)
		}
	}
}
