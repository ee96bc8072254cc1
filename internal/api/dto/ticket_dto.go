package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string  `json:"subject" validate:"required,max=255"`
	Description    string  `json:"description"`
	Category       string  `json:"category" validate:"required,category"`
	Priority       string  `json:"priority" validate:"omitempty,priority"`
	RequesterEmail string  `json:"requester_email" validate:"omitempty,email"`
	Department     *string `json:"department"`
	SubDepartment  *string `json:"sub_department"`
}

// UpdateTicketRequest payload. Absent fields are left unchanged.
type UpdateTicketRequest struct {
	Subject          *string `json:"subject" validate:"omitempty,max=255"`
	Description      *string `json:"description"`
	Category         *string `json:"category" validate:"omitempty,category"`
	Priority         *string `json:"priority" validate:"omitempty,priority"`
	Status           *string `json:"status" validate:"omitempty,status"`
	AssignedTo       *string `json:"assigned_to" validate:"omitempty,email"`
	Department       *string `json:"department"`
	SubDepartment    *string `json:"sub_department"`
	Rating           *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	EscalationReason *string `json:"escalation_reason"`
	SLAViolated      *bool   `json:"sla_violated"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
	Timeline    string `json:"timeline"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Message string `json:"message" validate:"required,max=10000"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID               string                `json:"id"`
	Subject          string                `json:"subject"`
	Description      string                `json:"description"`
	Category         domain.Category       `json:"category"`
	Priority         domain.TicketPriority `json:"priority"`
	Status           domain.TicketStatus   `json:"status"`
	RequesterID      string                `json:"requester_id"`
	RequesterName    string                `json:"requester_name"`
	RequesterEmail   string                `json:"requester_email"`
	Department       *string               `json:"department"`
	SubDepartment    *string               `json:"sub_department"`
	AssignedTo       *string               `json:"assigned_to"`
	Rating           *int                  `json:"rating"`
	ResponseTime     *float64              `json:"response_time"`
	ResolutionTime   *float64              `json:"resolution_time"`
	EscalationReason *string               `json:"escalation_reason"`
	EscalationDate   *time.Time            `json:"escalation_date"`
	SLADueDate       time.Time             `json:"sla_due_date"`
	SLAViolated      bool                  `json:"sla_violated"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Attachments      []AttachmentResponse  `json:"attachments"`
	Messages         []ChatMessageResponse `json:"messages"`
}

// ChatMessageResponse is one conversation entry.
type ChatMessageResponse struct {
	ID          string      `json:"id"`
	TicketID    string      `json:"ticket_id"`
	SenderID    string      `json:"sender_id"`
	SenderName  string      `json:"sender_name"`
	SenderEmail string      `json:"sender_email"`
	SenderRole  domain.Role `json:"sender_role"`
	Message     string      `json:"message"`
	HTML        string      `json:"html"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	FileURL    string    `json:"file_url"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// EscalationResponse is one escalation record.
type EscalationResponse struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	Timeline    string    `json:"timeline"`
	EscalatedBy string    `json:"escalated_by"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

// WarningResponse reports a side effect that failed while the operation itself succeeded.
type WarningResponse struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:               t.ID,
		Subject:          t.Subject,
		Description:      t.Description,
		Category:         t.Category,
		Priority:         t.Priority,
		Status:           t.Status,
		RequesterID:      t.RequesterID,
		RequesterName:    t.RequesterName,
		RequesterEmail:   t.RequesterEmail,
		Department:       t.Department,
		SubDepartment:    t.SubDepartment,
		AssignedTo:       t.AssignedTo,
		Rating:           t.Rating,
		ResponseTime:     t.ResponseTime,
		ResolutionTime:   t.ResolutionTime,
		EscalationReason: t.EscalationReason,
		EscalationDate:   t.EscalationDate,
		SLADueDate:       t.SLADueDate,
		SLAViolated:      t.SLAViolated,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		Attachments:      make([]AttachmentResponse, 0, len(t.Attachments)),
		Messages:         make([]ChatMessageResponse, 0, len(t.Messages)),
	}
	for _, a := range t.Attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(a))
	}
	for _, m := range t.Messages {
		resp.Messages = append(resp.Messages, NewChatMessageResponse(m))
	}
	return resp
}

// NewChatMessageResponse maps a chat message.
func NewChatMessageResponse(m domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:          m.ID,
		TicketID:    m.TicketID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		SenderEmail: m.SenderEmail,
		SenderRole:  m.SenderRole,
		Message:     m.Message,
		HTML:        MessageHTML(m.Message),
		CreatedAt:   m.CreatedAt,
	}
}

// NewAttachmentResponse maps attachment metadata.
func NewAttachmentResponse(a domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		TicketID:   a.TicketID,
		FileName:   a.FileName,
		FileSize:   a.FileSize,
		FileType:   a.FileType,
		FileURL:    a.FileURL,
		UploadedBy: a.UploadedBy,
		CreatedAt:  a.CreatedAt,
	}
}

// NewEscalationResponse maps an escalation record.
func NewEscalationResponse(e domain.Escalation) EscalationResponse {
	return EscalationResponse{
		ID:          e.ID,
		Reason:      e.Reason,
		Description: e.Description,
		Timeline:    e.Timeline,
		EscalatedBy: e.EscalatedBy,
		Resolved:    e.Resolved,
		CreatedAt:   e.CreatedAt,
	}
}
