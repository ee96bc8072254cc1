package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// ChannelName is the pub/sub channel carrying a ticket's chat messages.
func ChannelName(ticketID string) string {
	return fmt.Sprintf("ticket:%s:messages", ticketID)
}

// RedisTransport fans chat messages out over Redis pub/sub so every replica's
// subscribers see messages persisted by any replica.
type RedisTransport struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTransport builds a transport on client.
func NewRedisTransport(client *redis.Client, logger *zap.Logger) *RedisTransport {
	return &RedisTransport{client: client, logger: observability.OrNop(logger).Named("realtime.redis")}
}

// Publish encodes msg as JSON on the ticket channel.
func (t *RedisTransport) Publish(ctx context.Context, msg domain.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode chat message: %w", err)
	}
	if err := t.client.Publish(ctx, ChannelName(msg.TicketID), payload).Err(); err != nil {
		return fmt.Errorf("publish chat message: %w", err)
	}
	return nil
}

// Subscribe waits for Redis to confirm the subscription before returning.
func (t *RedisTransport) Subscribe(ctx context.Context, ticketID string) (Stream, error) {
	pubsub := t.client.Subscribe(ctx, ChannelName(ticketID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", ChannelName(ticketID), err)
	}

	s := &redisStream{
		pubsub: pubsub,
		out:    make(chan domain.ChatMessage),
		stop:   make(chan struct{}),
	}
	go s.run(t.logger.With(zap.String("ticket_id", ticketID)))
	return s, nil
}

type redisStream struct {
	pubsub *redis.PubSub
	out    chan domain.ChatMessage
	stop   chan struct{}
	once   sync.Once
}

func (s *redisStream) Messages() <-chan domain.ChatMessage {
	return s.out
}

func (s *redisStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.pubsub.Close()
	})
	return err
}

func (s *redisStream) run(logger *zap.Logger) {
	defer close(s.out)
	incoming := s.pubsub.Channel()
	for {
		select {
		case <-s.stop:
			return
		case raw, ok := <-incoming:
			if !ok {
				return
			}
			var msg domain.ChatMessage
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				logger.Warn("drop malformed chat message", zap.Error(err))
				continue
			}
			select {
			case s.out <- msg:
			case <-s.stop:
				return
			}
		}
	}
}
