package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// Config carries chat provider credentials and per-category webhook targets.
type Config struct {
	ChatBaseURL string
	APIKey      string
	APIToken    string
	AppBaseURL  string
	Webhooks    map[domain.Category]string
	Timeout     time.Duration
	MaxAttempts int
}

// ConfigFrom maps service configuration onto gateway settings. Others posts to the HR webhook.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ChatBaseURL: cfg.Chat.BaseURL,
		APIKey:      cfg.Chat.APIKey,
		APIToken:    cfg.Chat.APIToken,
		AppBaseURL:  cfg.App.BaseURL,
		Webhooks: map[domain.Category]string{
			domain.CategoryITInfrastructure: cfg.Webhooks.ITInfrastructure,
			domain.CategoryHR:               cfg.Webhooks.HR,
			domain.CategoryAdministration:   cfg.Webhooks.Administration,
			domain.CategoryAccounts:         cfg.Webhooks.Accounts,
			domain.CategoryOthers:           cfg.Webhooks.HR,
		},
		Timeout:     cfg.Chat.HTTPTimeout(),
		MaxAttempts: cfg.Chat.DMMaxAttempts,
	}
}

// Result reports what a dispatch delivered. Errors holds one entry per failed action.
type Result struct {
	DMSent      []string
	WebhookSent bool
	Errors      []error
}

// Gateway turns lifecycle events into direct messages and category webhook posts.
// It holds no per-event state.
type Gateway struct {
	cfg     Config
	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the transport used for provider and webhook calls.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) { g.client = client }
}

// WithSleep replaces the backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Gateway) { g.sleep = sleep }
}

// WithMetrics records attempt outcomes.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(g *Gateway) { g.metrics = metrics }
}

// New builds a Gateway.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Gateway {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.ChatBaseURL = strings.TrimRight(cfg.ChatBaseURL, "/")
	cfg.AppBaseURL = strings.TrimRight(cfg.AppBaseURL, "/")

	g := &Gateway{
		cfg:    cfg,
		client: &http.Client{},
		logger: observability.OrNop(logger).Named("gateway"),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dispatch sends every direct message for the event, then the category webhook.
// A failed recipient never prevents the others or the webhook.
func (g *Gateway) Dispatch(ctx context.Context, ev events.Event) Result {
	result := Result{DMSent: []string{}}
	text := directMessageText(ev, g.cfg.AppBaseURL)

	for _, recipient := range recipients(ev) {
		if err := g.sendDirectMessage(ctx, recipient, text); err != nil {
			g.logger.Warn("direct message failed",
				zap.String("event_type", string(ev.Type)),
				zap.String("ticket_id", ev.TicketID),
				zap.String("recipient", recipient),
				zap.Error(err),
			)
			g.metrics.RecordDMAttempt(string(ev.Type), "failed")
			result.Errors = append(result.Errors, &RecipientError{Recipient: recipient, Err: err})
			continue
		}
		g.metrics.RecordDMAttempt(string(ev.Type), "sent")
		result.DMSent = append(result.DMSent, recipient)
	}

	if ev.Type == events.EventTicketMessage {
		return result
	}
	url := g.cfg.Webhooks[ev.Category]
	if url == "" {
		return result
	}
	if err := g.postWebhook(ctx, url, webhookText(ev, g.cfg.AppBaseURL)); err != nil {
		g.logger.Warn("category webhook failed",
			zap.String("event_type", string(ev.Type)),
			zap.String("ticket_id", ev.TicketID),
			zap.String("category", string(ev.Category)),
			zap.Error(err),
		)
		g.metrics.RecordWebhook(string(ev.Category), false)
		result.Errors = append(result.Errors, &WebhookError{Category: ev.Category, Err: err})
		return result
	}
	g.metrics.RecordWebhook(string(ev.Category), true)
	result.WebhookSent = true
	return result
}

// recipients resolves direct-message targets for an event, lowercased and de-duplicated.
func recipients(ev events.Event) []string {
	var candidates []string
	switch ev.Type {
	case events.EventTicketEscalated:
		candidates = append([]string{ev.EmployeeEmail}, ev.HREmails...)
	case events.EventTicketMessage:
		if ev.SenderRole == domain.RoleEmployee {
			candidates = ev.HREmails
		} else {
			candidates = []string{ev.EmployeeEmail}
		}
	default:
		candidates = []string{ev.EmployeeEmail}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		email := domain.NormalizeEmail(candidate)
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
