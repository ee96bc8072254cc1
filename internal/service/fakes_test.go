package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var errBoom = errors.New("boom")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{t: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeTickets struct {
	mu        sync.Mutex
	rows      map[string]*domain.Ticket
	createErr error
	updateErr error
	getErr    error
}

func newFakeTickets() *fakeTickets { return &fakeTickets{rows: map[string]*domain.Ticket{}} }

func (f *fakeTickets) Create(_ context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	t.ID = uuid.NewString()
	f.rows[t.ID] = t.Clone()
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	t, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t.Clone(), nil
}

func (f *fakeTickets) Update(_ context.Context, t *domain.Ticket, expected time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.rows[t.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(expected) {
		return repository.ErrStaleTicket
	}
	f.rows[t.ID] = t.Clone()
	return nil
}

func (f *fakeTickets) MarkOverdueSLAViolated(_ context.Context, now time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, t := range f.rows {
		if t.Status != domain.TicketStatusClosed && !t.SLAViolated && t.SLADueDate.Before(now) {
			t.SLAViolated = true
			t.UpdatedAt = now
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeTickets) DeleteCreatedBefore(_ context.Context, cutoff time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, t := range f.rows {
		if t.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
			delete(f.rows, id)
		}
	}
	return ids, nil
}

func (f *fakeTickets) createdAt(id string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return time.Time{}, false
	}
	return t.CreatedAt, true
}

func (f *fakeTickets) stored(id string) *domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Clone()
}

type fakeUsers struct {
	users []domain.User
}

func (f *fakeUsers) add(email string, role domain.Role, created time.Time) domain.User {
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      email,
		Role:      role,
		CreatedAt: created,
		UpdatedAt: created,
	}
	f.users = append(f.users, u)
	return u
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(email) {
			user := u
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

type fakeAuditLogs struct {
	mu        sync.Mutex
	entries   []domain.AuditLog
	createErr error
}

func (f *fakeAuditLogs) Create(_ context.Context, e *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = uuid.NewString()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditLogs) ListByTicket(_ context.Context, ticketID string, since *time.Time, limit int) ([]domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditLog
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.TicketID != ticketID {
			continue
		}
		if since != nil && e.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAuditLogs) DeleteByTicketIDs(_ context.Context, ids []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.entries[:0]
	var n int64
	for _, e := range f.entries {
		if drop[e.TicketID] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func (f *fakeAuditLogs) byTicket(ticketID string) []domain.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditLog
	for _, e := range f.entries {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out
}

type fakeNotifications struct {
	mu        sync.Mutex
	items     []domain.Notification
	createErr error
}

func (f *fakeNotifications) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = uuid.NewString()
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, email string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		n := f.items[i]
		if n.UserEmail != email || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, email string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserEmail == email {
			if !f.items[i].Read {
				f.items[i].Read = true
				f.items[i].ReadAt = &at
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, email string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.items {
		if f.items[i].UserEmail == email && !f.items[i].Read {
			f.items[i].Read = true
			f.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, email string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.items {
		if n.UserEmail == email && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) recipients(ticketID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.items {
		if n.TicketID != nil && *n.TicketID == ticketID {
			out = append(out, n.UserEmail)
		}
	}
	return out
}

func (f *fakeNotifications) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeMessages struct {
	mu    sync.Mutex
	items []domain.ChatMessage
}

func (f *fakeMessages) Create(_ context.Context, m *domain.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.NewString()
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeMessages) ListByTicket(_ context.Context, ticketID string) ([]domain.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range f.items {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeAttachments struct {
	mu        sync.Mutex
	items     map[string]domain.Attachment
	tickets   *fakeTickets
	createErr error
	listErr   error
}

func newFakeAttachments(tickets *fakeTickets) *fakeAttachments {
	return &fakeAttachments{items: map[string]domain.Attachment{}, tickets: tickets}
}

func (f *fakeAttachments) Create(_ context.Context, a *domain.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = uuid.NewString()
	f.items[a.ID] = *a
	return nil
}

func (f *fakeAttachments) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &a, nil
}

func (f *fakeAttachments) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAttachments) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Attachment
	for _, a := range f.items {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachments) ListByTicketCreatedBefore(_ context.Context, cutoff time.Time) ([]domain.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Attachment
	for _, a := range f.items {
		if created, ok := f.tickets.createdAt(a.TicketID); ok && created.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeEscalations struct {
	mu    sync.Mutex
	items []domain.Escalation
}

func (f *fakeEscalations) Create(_ context.Context, e *domain.Escalation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.NewString()
	f.items = append(f.items, *e)
	return nil
}

func (f *fakeEscalations) ListByTicket(_ context.Context, ticketID string) ([]domain.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Escalation
	for _, e := range f.items {
		if e.TicketID == ticketID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSLAConfigs struct {
	mu   sync.Mutex
	rows map[string]domain.SLAConfig
}

func newFakeSLAConfigs() *fakeSLAConfigs {
	return &fakeSLAConfigs{rows: map[string]domain.SLAConfig{}}
}

func slaKey(c domain.Category, p domain.TicketPriority) string { return string(c) + "|" + string(p) }

func (f *fakeSLAConfigs) Get(_ context.Context, c domain.Category, p domain.TicketPriority) (*domain.SLAConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.rows[slaKey(c, p)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &cfg, nil
}

func (f *fakeSLAConfigs) Upsert(_ context.Context, cfg *domain.SLAConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slaKey(cfg.Category, cfg.Priority)
	if existing, ok := f.rows[key]; ok {
		cfg.ID = existing.ID
	} else {
		cfg.ID = uuid.NewString()
	}
	f.rows[key] = *cfg
	return nil
}

func (f *fakeSLAConfigs) List(_ context.Context) ([]domain.SLAConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SLAConfig
	for _, cfg := range f.rows {
		out = append(out, cfg)
	}
	return out, nil
}

type fakeErrorLogs struct {
	mu      sync.Mutex
	entries []domain.ErrorLog
}

func (f *fakeErrorLogs) Create(_ context.Context, e *domain.ErrorLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeErrorLogs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	removeErr error
	removed   []string
}

func newFakeBlobStore() *fakeBlobStore { return &fakeBlobStore{objects: map[string][]byte{}} }

func (f *fakeBlobStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	f.objects[key] = buf.Bytes()
	return "https://files.example.com/" + key, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (d *recordingDispatcher) Publish(_ context.Context, ev events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return d.err
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, ev := range d.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	err      error
}

func (p *recordingPublisher) PublishChatMessage(_ context.Context, msg domain.ChatMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return p.err
}

// harness wires every service against in-memory collaborators.
type harness struct {
	clock         *testClock
	tickets       *fakeTickets
	users         *fakeUsers
	auditLogs     *fakeAuditLogs
	notifications *fakeNotifications
	messages      *fakeMessages
	attachments   *fakeAttachments
	escalations   *fakeEscalations
	slaConfigs    *fakeSLAConfigs
	errorLogs     *fakeErrorLogs
	blobs         *fakeBlobStore
	dispatcher    *recordingDispatcher
	publisher     *recordingPublisher

	sla          *SLAService
	audit        *AuditService
	notifier     *NotificationService
	assignment   *AssignmentService
	attachmentSv *AttachmentService
	ticketsSv    *TicketService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	tickets := newFakeTickets()
	h := &harness{
		clock:         newTestClock(start),
		tickets:       tickets,
		users:         &fakeUsers{},
		auditLogs:     &fakeAuditLogs{},
		notifications: &fakeNotifications{},
		messages:      &fakeMessages{},
		attachments:   newFakeAttachments(tickets),
		escalations:   &fakeEscalations{},
		slaConfigs:    newFakeSLAConfigs(),
		errorLogs:     &fakeErrorLogs{},
		blobs:         newFakeBlobStore(),
		dispatcher:    &recordingDispatcher{},
		publisher:     &recordingPublisher{},
	}

	base := start.Add(-30 * 24 * time.Hour)
	h.users.add("alice@example.com", domain.RoleEmployee, base)
	h.users.add("it1@example.com", domain.RoleITOwner, base.Add(1*time.Minute))
	h.users.add("it2@example.com", domain.RoleITOwner, base.Add(2*time.Minute))
	h.users.add("hr1@example.com", domain.RoleHROwner, base.Add(3*time.Minute))
	h.users.add("hr2@example.com", domain.RoleHROwner, base.Add(4*time.Minute))
	h.users.add("acc@example.com", domain.RoleAccountsOwner, base.Add(5*time.Minute))
	h.users.add("boss@example.com", domain.RoleOwner, base.Add(10*time.Minute))

	h.sla = NewSLAService(h.slaConfigs, nil)
	h.audit = NewAuditService(AuditDependencies{
		AuditRepo:    h.auditLogs,
		UserRepo:     h.users,
		ErrorLogRepo: h.errorLogs,
		Now:          h.clock.Now,
	})
	h.notifier = NewNotificationService(h.notifications, h.clock.Now)
	h.assignment = NewAssignmentService(h.users)
	h.attachmentSv = NewAttachmentService(AttachmentDependencies{
		AttachmentRepo: h.attachments,
		TicketRepo:     h.tickets,
		UserRepo:       h.users,
		ErrorLogRepo:   h.errorLogs,
		Audit:          h.audit,
		Store:          h.blobs,
		Now:            h.clock.Now,
	})
	h.ticketsSv = NewTicketService(TicketDependencies{
		TicketRepo:     h.tickets,
		UserRepo:       h.users,
		MessageRepo:    h.messages,
		AttachmentRepo: h.attachments,
		EscalationRepo: h.escalations,
		AuditRepo:      h.auditLogs,
		ErrorLogRepo:   h.errorLogs,
		SLA:            h.sla,
		Audit:          h.audit,
		Notifications:  h.notifier,
		Assignment:     h.assignment,
		Dispatcher:     h.dispatcher,
		Publisher:      h.publisher,
		Store:          h.blobs,
		Now:            h.clock.Now,
	})
	return h
}

func (h *harness) createTicket(t *testing.T, category domain.Category, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	res, err := h.ticketsSv.Create(context.Background(), TicketCreateInput{
		Subject:     "Printer on fire",
		Description: "Smoke everywhere",
		Category:    category,
		Priority:    priority,
	}, "alice@example.com", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return res.Value
}
