package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DefaultEscalationReason is used when an escalation arrives without a reason.
const DefaultEscalationReason = "No reason provided"

const defaultRetention = 90 * 24 * time.Hour

// ChatPublisher pushes persisted chat messages to live subscribers.
type ChatPublisher interface {
	PublishChatMessage(ctx context.Context, msg domain.ChatMessage) error
}

// TicketService is the ticket lifecycle orchestrator. Every step of an operation runs
// after the previous one completes so audit entries precede the notifications they explain.
type TicketService struct {
	tickets     repository.TicketRepository
	users       repository.UserRepository
	messages    repository.ChatMessageRepository
	attachments repository.AttachmentRepository
	escalations repository.EscalationRepository
	auditLogs   repository.AuditLogRepository
	sla         *SLAService
	audit       *AuditService
	notifier    *NotificationService
	assignment  *AssignmentService
	dispatcher  events.Dispatcher
	publisher   ChatPublisher
	blobs       BlobStore
	retention   time.Duration
	diag        diagnostics
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	MessageRepo    repository.ChatMessageRepository
	AttachmentRepo repository.AttachmentRepository
	EscalationRepo repository.EscalationRepository
	AuditRepo      repository.AuditLogRepository
	ErrorLogRepo   repository.ErrorLogRepository
	SLA            *SLAService
	Audit          *AuditService
	Notifications  *NotificationService
	Assignment     *AssignmentService
	Dispatcher     events.Dispatcher
	Publisher      ChatPublisher
	Store          BlobStore
	Retention      time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject        string
	Description    string
	Category       domain.Category
	Priority       domain.TicketPriority
	RequesterEmail string
	Department     *string
	SubDepartment  *string
}

// TicketPatch holds the fields an update may change. Nil fields are left alone.
type TicketPatch struct {
	Subject          *string
	Description      *string
	Category         *domain.Category
	Priority         *domain.TicketPriority
	Status           *domain.TicketStatus
	AssignedTo       *string
	Department       *string
	SubDepartment    *string
	Rating           *int
	EscalationReason *string
	SLAViolated      *bool
}

// ChatMessageInput describes a message posted to a ticket conversation.
type ChatMessageInput struct {
	// Sender is a user id or an email address.
	Sender     string
	SenderRole domain.Role
	Message    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := clockOrDefault(deps.Now)
	logger := observability.OrNop(deps.Logger).Named("tickets")
	retention := deps.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		messages:    deps.MessageRepo,
		attachments: deps.AttachmentRepo,
		escalations: deps.EscalationRepo,
		auditLogs:   deps.AuditRepo,
		sla:         deps.SLA,
		audit:       deps.Audit,
		notifier:    deps.Notifications,
		assignment:  deps.Assignment,
		dispatcher:  deps.Dispatcher,
		publisher:   deps.Publisher,
		blobs:       deps.Store,
		retention:   retention,
		diag:        diagnostics{errorLogs: deps.ErrorLogRepo, logger: logger, now: now},
		logger:      logger,
		now:         now,
	}
}

// Create opens a ticket for the requester (the performer when no requester is given),
// assigns the first permitted owner and fans out notifications.
func (s *TicketService) Create(ctx context.Context, in TicketCreateInput, performer string, performerRole domain.Role) (Result[*domain.Ticket], error) {
	var res Result[*domain.Ticket]
	if err := validateCreate(&in); err != nil {
		return res, err
	}

	requesterIdentity := in.RequesterEmail
	if strings.TrimSpace(requesterIdentity) == "" {
		requesterIdentity = performer
	}
	requester, err := resolveUser(ctx, s.users, requesterIdentity)
	if err != nil {
		return res, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		Subject:        in.Subject,
		Description:    in.Description,
		Category:       in.Category,
		Priority:       in.Priority,
		Status:         domain.TicketStatusOpen,
		RequesterID:    requester.InternalID(),
		RequesterName:  requester.DisplayName(),
		RequesterEmail: domain.NormalizeEmail(requester.Email),
		Department:     in.Department,
		SubDepartment:  in.SubDepartment,
		SLADueDate:     s.sla.DueDate(ctx, in.Category, in.Priority, now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if ticket.Department == nil {
		ticket.Department = requester.Department
	}

	assignee, candidates, err := s.assignment.SelectAssignee(ctx, ticket.Category)
	if err != nil {
		return res, err
	}
	if assignee != nil {
		email := domain.NormalizeEmail(assignee.Email)
		ticket.AssignedTo = &email
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return res, apperrors.NewDependencyError("postgres", err)
	}
	ticket.Attachments = []domain.Attachment{}
	ticket.Messages = []domain.ChatMessage{}
	res.Value = ticket

	s.auditStep(ctx, &res.Warnings, AuditEntryInput{
		TicketID:    ticket.ID,
		Action:      domain.AuditActionCreated,
		Details:     fmt.Sprintf("Ticket created by %s (%s)", domain.NormalizeEmail(performer), performerRole),
		PerformedBy: performer,
		NewValue:    stringPtr(string(ticket.Status)),
	})

	s.notify(ctx, &res.Warnings, NotificationInput{
		UserEmail: ticket.RequesterEmail,
		Title:     "Ticket Created",
		Message:   fmt.Sprintf("Your ticket %q has been created.", ticket.Subject),
		Type:      domain.NotificationSuccess,
		TicketID:  &ticket.ID,
	})
	if ticket.AssignedTo != nil {
		s.notify(ctx, &res.Warnings, NotificationInput{
			UserEmail: *ticket.AssignedTo,
			Title:     "New Ticket Assigned",
			Message:   fmt.Sprintf("Ticket %q has been assigned to you.", ticket.Subject),
			Type:      domain.NotificationInfo,
			TicketID:  &ticket.ID,
		})
	}
	for _, candidate := range candidates {
		email := domain.NormalizeEmail(candidate.Email)
		if email == ticket.AssigneeEmail() {
			continue
		}
		s.notify(ctx, &res.Warnings, NotificationInput{
			UserEmail: email,
			Title:     "New Ticket",
			Message:   fmt.Sprintf("A new %s ticket %q was raised by %s.", ticket.Category, ticket.Subject, ticket.RequesterName),
			Type:      domain.NotificationInfo,
			TicketID:  &ticket.ID,
		})
	}

	s.publish(ctx, &res.Warnings, events.NewTicketEvent(uuid.NewString(), events.EventTicketCreated, ticket, now))
	return res, nil
}

// Update applies patch, then audits and notifies each field that actually changed.
func (s *TicketService) Update(ctx context.Context, ticketID string, patch TicketPatch, performer string) (Result[*domain.Ticket], error) {
	return s.update(ctx, ticketID, patch, performer, false)
}

func (s *TicketService) update(ctx context.Context, ticketID string, patch TicketPatch, performer string, escalating bool) (Result[*domain.Ticket], error) {
	var res Result[*domain.Ticket]
	if err := validatePatch(&patch); err != nil {
		return res, err
	}
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return res, err
	}
	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return res, storeError("ticket", err, map[string]any{"ticket_id": ticketID})
	}

	now := s.now()
	next := current.Clone()
	patch.applyTo(next)

	if next.Status != current.Status {
		switch next.Status {
		case domain.TicketStatusInProgress:
			if next.ResponseTime == nil {
				hours := domain.ElapsedHours(next.CreatedAt, now)
				next.ResponseTime = &hours
			}
		case domain.TicketStatusClosed:
			if next.ResolutionTime == nil {
				hours := domain.ElapsedHours(next.CreatedAt, now)
				next.ResolutionTime = &hours
			}
		case domain.TicketStatusEscalated:
			if next.EscalationDate == nil {
				next.EscalationDate = &now
			}
		}
	}
	if escalating {
		next.EscalationDate = &now
	}

	var priorAssignee *string
	if next.Category != current.Category {
		assignee, _, err := s.assignment.SelectAssignee(ctx, next.Category)
		if err != nil {
			return res, err
		}
		var email *string
		if assignee != nil {
			email = stringPtr(domain.NormalizeEmail(assignee.Email))
		}
		next.AssignedTo = email
		if current.AssignedTo != nil && !equalStringPtr(current.AssignedTo, email) {
			priorAssignee = current.AssignedTo
		}
	}

	changes := diffTickets(current, next)
	if len(changes) == 0 && !escalating {
		res.Value = current
		return res, nil
	}

	next.UpdatedAt = now
	if err := s.tickets.Update(ctx, next, current.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrStaleTicket) {
			return res, apperrors.NewConflict("ticket was modified by another request", map[string]any{"ticket_id": ticketID})
		}
		return res, storeError("ticket", err, map[string]any{"ticket_id": ticketID})
	}
	res.Value = next

	if priorAssignee != nil {
		s.notify(ctx, &res.Warnings, NotificationInput{
			UserEmail: *priorAssignee,
			Title:     "Ticket Reassigned",
			Message:   fmt.Sprintf("Ticket %q moved to %s and was reassigned to %s.", next.Subject, next.Category, valueOrNone(next.AssignedTo)),
			Type:      domain.NotificationWarning,
			TicketID:  &next.ID,
		})
	}

	for _, change := range changes {
		s.auditStep(ctx, &res.Warnings, AuditEntryInput{
			TicketID:    next.ID,
			Action:      change.action(),
			Details:     change.describe(),
			PerformedBy: performer,
			OldValue:    change.Old,
			NewValue:    change.New,
		})
		s.notify(ctx, &res.Warnings, NotificationInput{
			UserEmail: next.RequesterEmail,
			Title:     "Ticket Updated",
			Message:   fmt.Sprintf("Ticket %q: %s.", next.Subject, change.describe()),
			Type:      requesterNotificationType(change, next),
			TicketID:  &next.ID,
		})
		if change.Field == fieldAssignedTo && next.AssignedTo != nil {
			s.notify(ctx, &res.Warnings, NotificationInput{
				UserEmail: *next.AssignedTo,
				Title:     "Ticket Assigned",
				Message:   fmt.Sprintf("Ticket %q has been assigned to you.", next.Subject),
				Type:      domain.NotificationInfo,
				TicketID:  &next.ID,
			})
		}
		if change.Field == fieldStatus {
			if next.Status == domain.TicketStatusEscalated {
				if !escalating {
					s.escalationEffects(ctx, &res.Warnings, next, performer, false)
				}
			} else {
				s.publish(ctx, &res.Warnings, events.NewTicketEvent(uuid.NewString(), events.EventTicketUpdated, next, now))
			}
		}
	}
	return res, nil
}

// Escalate moves the ticket to Escalated, records an Escalation and alerts every HR owner.
// The ticket update and the escalation record are separate writes.
func (s *TicketService) Escalate(ctx context.Context, ticketID, reason, description, timeline, performer string) (Result[*domain.Ticket], error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultEscalationReason
	}
	status := domain.TicketStatusEscalated
	res, err := s.update(ctx, ticketID, TicketPatch{Status: &status, EscalationReason: &reason}, performer, true)
	if err != nil {
		return res, err
	}

	escalation := &domain.Escalation{
		TicketID:    res.Value.ID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		Timeline:    strings.TrimSpace(timeline),
		EscalatedBy: domain.NormalizeEmail(performer),
		CreatedAt:   s.now(),
	}
	if err := s.escalations.Create(ctx, escalation); err != nil {
		return res, apperrors.NewDependencyError("postgres", err)
	}

	s.escalationEffects(ctx, &res.Warnings, res.Value, performer, true)
	return res, nil
}

// escalationEffects notifies HR owners and the gateway; withAudit also writes the escalated entry.
func (s *TicketService) escalationEffects(ctx context.Context, warnings *[]Warning, ticket *domain.Ticket, performer string, withAudit bool) {
	reason := DefaultEscalationReason
	if ticket.EscalationReason != nil && strings.TrimSpace(*ticket.EscalationReason) != "" {
		reason = *ticket.EscalationReason
	}
	if withAudit {
		s.auditStep(ctx, warnings, AuditEntryInput{
			TicketID:    ticket.ID,
			Action:      domain.AuditActionEscalated,
			Details:     fmt.Sprintf("Ticket escalated: %s", reason),
			PerformedBy: performer,
			NewValue:    &reason,
		})
	}

	hrOwners, err := s.assignment.UsersWithRole(ctx, domain.RoleHROwner)
	if err != nil {
		s.diag.warn(ctx, warnings, "notification", err, map[string]any{"ticket_id": ticket.ID})
	}
	hrEmails := make([]string, 0, len(hrOwners))
	for _, owner := range hrOwners {
		email := domain.NormalizeEmail(owner.Email)
		hrEmails = append(hrEmails, email)
		s.notify(ctx, warnings, NotificationInput{
			UserEmail: email,
			Title:     "Ticket Escalated",
			Message:   fmt.Sprintf("Ticket %q was escalated: %s", ticket.Subject, reason),
			Type:      domain.NotificationWarning,
			TicketID:  &ticket.ID,
		})
	}

	ev := events.NewTicketEvent(uuid.NewString(), events.EventTicketEscalated, ticket, s.now())
	ev.EscalationReason = reason
	ev.HREmails = hrEmails
	s.publish(ctx, warnings, ev)
}

// AddChatMessage appends the message as written and notifies everyone on the ticket but the sender.
func (s *TicketService) AddChatMessage(ctx context.Context, ticketID string, in ChatMessageInput) (Result[*domain.ChatMessage], error) {
	var res Result[*domain.ChatMessage]
	if !in.SenderRole.Valid() {
		return res, apperrors.NewValidationError("invalid sender role", map[string]any{"sender_role": in.SenderRole})
	}
	body := strings.TrimSpace(in.Message)
	if body == "" {
		return res, apperrors.NewValidationError("message is required", nil)
	}

	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return res, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return res, storeError("ticket", err, map[string]any{"ticket_id": ticketID})
	}
	sender, err := resolveUser(ctx, s.users, in.Sender)
	if err != nil {
		return res, err
	}
	senderEmail := domain.NormalizeEmail(sender.Email)

	now := s.now()
	msg := &domain.ChatMessage{
		TicketID:    ticket.ID,
		SenderID:    sender.ID,
		SenderName:  sender.DisplayName(),
		SenderEmail: senderEmail,
		SenderRole:  in.SenderRole,
		Message:     body,
		CreatedAt:   now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return res, apperrors.NewDependencyError("postgres", err)
	}
	res.Value = msg

	s.auditStep(ctx, &res.Warnings, AuditEntryInput{
		TicketID:    ticket.ID,
		Action:      domain.AuditActionUpdated,
		Details:     fmt.Sprintf("New message: %s", stringPreview(body, 50)),
		PerformedBy: senderEmail,
	})

	for _, recipient := range chatRecipients(ticket, senderEmail) {
		s.notify(ctx, &res.Warnings, NotificationInput{
			UserEmail: recipient,
			Title:     "New Message",
			Message:   fmt.Sprintf("%s on %q: %s", msg.SenderName, ticket.Subject, stringPreview(body, 100)),
			Type:      domain.NotificationInfo,
			TicketID:  &ticket.ID,
		})
	}

	if s.publisher != nil {
		if err := s.publisher.PublishChatMessage(ctx, *msg); err != nil {
			s.diag.warn(ctx, &res.Warnings, "realtime", err, map[string]any{"ticket_id": ticket.ID, "message_id": msg.ID})
		}
	}

	ev := events.NewTicketEvent(uuid.NewString(), events.EventTicketMessage, ticket, now)
	ev.MessageContent = body
	ev.SenderRole = in.SenderRole
	ev.HREmails = s.staffContacts(ctx, &res.Warnings, ticket)
	s.publish(ctx, &res.Warnings, ev)
	return res, nil
}

// CleanupOldTickets deletes tickets past the retention window and records one bulk audit entry.
func (s *TicketService) CleanupOldTickets(ctx context.Context) (Result[int], error) {
	var res Result[int]
	cutoff := s.now().Add(-s.retention)
	// Attachment rows go with their tickets, so the blob keys are read first.
	expired, err := s.attachments.ListByTicketCreatedBefore(ctx, cutoff)
	if err != nil {
		return res, apperrors.NewDependencyError("postgres", err)
	}
	ids, err := s.tickets.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return res, apperrors.NewDependencyError("postgres", err)
	}
	res.Value = len(ids)
	s.removeBlobs(ctx, &res.Warnings, ids, expired)

	if len(ids) > 0 {
		if _, err := s.auditLogs.DeleteByTicketIDs(ctx, ids); err != nil {
			s.diag.warn(ctx, &res.Warnings, "audit", err, map[string]any{"deleted_tickets": len(ids)})
		}
	}
	if _, err := s.audit.appendSystem(ctx, AuditEntryInput{
		TicketID: domain.SystemTicketID,
		Action:   domain.AuditActionBulkDeleted,
		Details:  fmt.Sprintf("Deleted %d tickets created before %s", len(ids), cutoff.Format(time.RFC3339)),
		NewValue: stringPtr(strconv.Itoa(len(ids))),
	}); err != nil {
		s.diag.warn(ctx, &res.Warnings, "audit", err, map[string]any{"deleted_tickets": len(ids)})
	}
	s.logger.Info("ticket retention cleanup", zap.Int("deleted", len(ids)), zap.Time("cutoff", cutoff))
	return res, nil
}

// removeBlobs deletes the stored files of attachments whose tickets were deleted.
func (s *TicketService) removeBlobs(ctx context.Context, warnings *[]Warning, deleted []string, attachments []domain.Attachment) {
	if s.blobs == nil || len(attachments) == 0 {
		return
	}
	gone := make(map[string]struct{}, len(deleted))
	for _, id := range deleted {
		gone[id] = struct{}{}
	}
	for _, a := range attachments {
		if _, ok := gone[a.TicketID]; !ok {
			continue
		}
		if err := s.blobs.Remove(ctx, a.StorageKey); err != nil {
			s.diag.warn(ctx, warnings, "object storage", err, map[string]any{"ticket_id": a.TicketID, "key": a.StorageKey})
		}
	}
}

// MarkSLAViolations flags open tickets whose due date has passed.
func (s *TicketService) MarkSLAViolations(ctx context.Context) (int, error) {
	ids, err := s.tickets.MarkOverdueSLAViolated(ctx, s.now())
	if err != nil {
		return 0, apperrors.NewDependencyError("postgres", err)
	}
	return len(ids), nil
}

// Get returns the ticket with its attachments and messages.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError("ticket", err, map[string]any{"ticket_id": ticketID})
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	messages, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	ticket.Attachments = append([]domain.Attachment{}, attachments...)
	ticket.Messages = append([]domain.ChatMessage{}, messages...)
	return ticket, nil
}

// ListEscalations returns the escalation history of a ticket.
func (s *TicketService) ListEscalations(ctx context.Context, ticketID string) ([]domain.Escalation, error) {
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return nil, err
	}
	items, err := s.escalations.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	return append([]domain.Escalation{}, items...), nil
}

// staffContacts returns who should hear about an employee's message: the assignee, or every
// permitted owner when the ticket is unassigned.
func (s *TicketService) staffContacts(ctx context.Context, warnings *[]Warning, ticket *domain.Ticket) []string {
	if ticket.AssignedTo != nil {
		return []string{*ticket.AssignedTo}
	}
	candidates, err := s.assignment.Candidates(ctx, ticket.Category)
	if err != nil {
		s.diag.warn(ctx, warnings, "gateway", err, map[string]any{"ticket_id": ticket.ID})
		return nil
	}
	emails := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		emails = append(emails, domain.NormalizeEmail(candidate.Email))
	}
	return emails
}

func (s *TicketService) auditStep(ctx context.Context, warnings *[]Warning, in AuditEntryInput) {
	if _, err := s.audit.Append(ctx, in); err != nil {
		s.diag.warn(ctx, warnings, "audit", err, auditContext(in))
	}
}

func (s *TicketService) notify(ctx context.Context, warnings *[]Warning, in NotificationInput) {
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		fields := map[string]any{"recipient": in.UserEmail, "title": in.Title}
		if in.TicketID != nil {
			fields["ticket_id"] = *in.TicketID
		}
		s.diag.warn(ctx, warnings, "notification", err, fields)
	}
}

func (s *TicketService) publish(ctx context.Context, warnings *[]Warning, ev events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, ev); err != nil {
		s.diag.warn(ctx, warnings, "gateway", err, map[string]any{"ticket_id": ev.TicketID, "event_type": string(ev.Type)})
	}
}

// chatRecipients is the requester and assignee, minus the sender.
func chatRecipients(ticket *domain.Ticket, senderEmail string) []string {
	var out []string
	for _, candidate := range []string{ticket.RequesterEmail, ticket.AssigneeEmail()} {
		email := domain.NormalizeEmail(candidate)
		if email == "" || email == senderEmail {
			continue
		}
		if len(out) > 0 && out[0] == email {
			continue
		}
		out = append(out, email)
	}
	return out
}

func requesterNotificationType(change fieldChange, ticket *domain.Ticket) domain.NotificationType {
	if change.Field != fieldStatus {
		return domain.NotificationInfo
	}
	switch ticket.Status {
	case domain.TicketStatusClosed:
		return domain.NotificationSuccess
	case domain.TicketStatusEscalated:
		return domain.NotificationWarning
	default:
		return domain.NotificationInfo
	}
}

func validateCreate(in *TicketCreateInput) error {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if in.Subject == "" {
		return apperrors.NewValidationError("subject is required", nil)
	}
	if !in.Category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": in.Category})
	}
	if in.Priority == "" {
		in.Priority = domain.TicketPriorityMedium
	}
	if !in.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": in.Priority})
	}
	return nil
}

func validatePatch(p *TicketPatch) error {
	if p.Subject != nil {
		trimmed := strings.TrimSpace(*p.Subject)
		if trimmed == "" {
			return apperrors.NewValidationError("subject must not be empty", nil)
		}
		p.Subject = &trimmed
	}
	if p.Category != nil && !p.Category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": *p.Category})
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *p.Priority})
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *p.Status})
	}
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": *p.Rating})
	}
	if p.AssignedTo != nil {
		email := domain.NormalizeEmail(*p.AssignedTo)
		p.AssignedTo = &email
	}
	return nil
}

func (p TicketPatch) applyTo(t *domain.Ticket) {
	if p.Subject != nil {
		t.Subject = *p.Subject
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			t.AssignedTo = nil
		} else {
			t.AssignedTo = stringPtr(*p.AssignedTo)
		}
	}
	if p.Department != nil {
		t.Department = stringPtr(*p.Department)
	}
	if p.SubDepartment != nil {
		t.SubDepartment = stringPtr(*p.SubDepartment)
	}
	if p.Rating != nil {
		rating := *p.Rating
		t.Rating = &rating
	}
	if p.EscalationReason != nil {
		t.EscalationReason = stringPtr(*p.EscalationReason)
	}
	if p.SLAViolated != nil {
		t.SLAViolated = *p.SLAViolated
	}
}
