package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// MaxAttachmentSize is the largest accepted upload, 10 MiB.
const MaxAttachmentSize int64 = 10 << 20

var allowedAttachmentTypes = []string{
	"image/jpeg",
	"image/png",
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
}

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BlobStore holds attachment contents.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

// FileUpload is an incoming attachment.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

// AttachmentService validates, stores and records ticket attachments.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	users       repository.UserRepository
	audit       *AuditService
	store       BlobStore
	diag        diagnostics
	logger      *zap.Logger
	now         func() time.Time
}

// AttachmentDependencies bundles collaborators for the attachment service.
type AttachmentDependencies struct {
	AttachmentRepo repository.AttachmentRepository
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	ErrorLogRepo   repository.ErrorLogRepository
	Audit          *AuditService
	Store          BlobStore
	Logger         *zap.Logger
	Now            func() time.Time
}

// NewAttachmentService constructs the service.
func NewAttachmentService(deps AttachmentDependencies) *AttachmentService {
	now := clockOrDefault(deps.Now)
	logger := observability.OrNop(deps.Logger).Named("attachments")
	return &AttachmentService{
		attachments: deps.AttachmentRepo,
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		audit:       deps.Audit,
		store:       deps.Store,
		diag:        diagnostics{errorLogs: deps.ErrorLogRepo, logger: logger, now: now},
		logger:      logger,
		now:         now,
	}
}

// ValidateFile enforces the size limit and MIME allow-list.
func ValidateFile(file FileUpload) error {
	if file.Size > MaxAttachmentSize {
		return apperrors.NewValidationError("file exceeds 10 MiB limit", map[string]any{
			"size":     file.Size,
			"max_size": MaxAttachmentSize,
		})
	}
	if file.Size <= 0 {
		return apperrors.NewValidationError("file is empty", nil)
	}
	if !slices.Contains(allowedAttachmentTypes, mediaType(file.ContentType)) {
		return apperrors.NewValidationError("file type not allowed", map[string]any{"type": file.ContentType})
	}
	return nil
}

// Upload stores the file under the ticket's namespace and records its metadata.
func (s *AttachmentService) Upload(ctx context.Context, file FileUpload, ticketID, uploaderEmail string) (Result[*domain.Attachment], error) {
	var res Result[*domain.Attachment]
	if err := ValidateFile(file); err != nil {
		return res, err
	}
	if s.store == nil {
		return res, apperrors.NewDependencyError("object storage", errors.New("object storage not configured"))
	}
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return res, err
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return res, storeError("ticket", err, map[string]any{"ticket_id": ticketID})
	}
	uploader, err := resolveUser(ctx, s.users, uploaderEmail)
	if err != nil {
		return res, err
	}

	now := s.now()
	key := objectKey(ticketID, file.Name, now)
	contentType := mediaType(file.ContentType)
	url, err := s.store.Put(ctx, key, file.Body, file.Size, contentType)
	if err != nil {
		return res, apperrors.NewDependencyError("object storage", err)
	}

	attachment := &domain.Attachment{
		TicketID:   ticketID,
		FileName:   file.Name,
		FileSize:   file.Size,
		FileType:   contentType,
		UploadedBy: uploader.Email,
		StorageKey: key,
		FileURL:    url,
		CreatedAt:  now,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			s.logger.Error("orphaned attachment blob", zap.String("key", key), zap.Error(rmErr))
		}
		return res, apperrors.NewDependencyError("postgres", err)
	}
	res.Value = attachment

	if _, err := s.audit.Append(ctx, AuditEntryInput{
		TicketID:    ticketID,
		Action:      domain.AuditActionAttachmentAdded,
		Details:     fmt.Sprintf("Attachment added: %s", file.Name),
		PerformedBy: uploader.Email,
		NewValue:    &attachment.FileName,
	}); err != nil {
		s.diag.warn(ctx, &res.Warnings, "audit", err, map[string]any{"ticket_id": ticketID, "attachment_id": attachment.ID})
	}
	return res, nil
}

// Delete removes the attachment metadata; blob removal is best-effort.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, performer string) (Result[*domain.Attachment], error) {
	var res Result[*domain.Attachment]
	if err := checkID("attachment", attachmentID, map[string]any{"attachment_id": attachmentID}); err != nil {
		return res, err
	}
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return res, storeError("attachment", err, map[string]any{"attachment_id": attachmentID})
	}

	if s.store != nil {
		if err := s.store.Remove(ctx, attachment.StorageKey); err != nil {
			s.diag.warn(ctx, &res.Warnings, "object storage", err, map[string]any{"attachment_id": attachmentID, "key": attachment.StorageKey})
		}
	}
	if err := s.attachments.Delete(ctx, attachmentID); err != nil {
		return res, storeError("attachment", err, map[string]any{"attachment_id": attachmentID})
	}
	res.Value = attachment

	if _, err := s.audit.Append(ctx, AuditEntryInput{
		TicketID:    attachment.TicketID,
		Action:      domain.AuditActionAttachmentDeleted,
		Details:     fmt.Sprintf("Attachment deleted: %s", attachment.FileName),
		PerformedBy: performer,
		OldValue:    &attachment.FileName,
	}); err != nil {
		s.diag.warn(ctx, &res.Warnings, "audit", err, map[string]any{"ticket_id": attachment.TicketID, "attachment_id": attachmentID})
	}
	return res, nil
}

// List returns a ticket's attachments.
func (s *AttachmentService) List(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	if err := checkID("ticket", ticketID, map[string]any{"ticket_id": ticketID}); err != nil {
		return nil, err
	}
	items, err := s.attachments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewDependencyError("postgres", err)
	}
	if items == nil {
		items = []domain.Attachment{}
	}
	return items, nil
}

func objectKey(ticketID, name string, now time.Time) string {
	return fmt.Sprintf("tickets/%s/%d-%s-%s", ticketID, now.UnixMilli(), uuid.NewString()[:8], sanitizeFileName(name))
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := strings.Trim(unsafeFileNameChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "file"
	}
	if len(clean) > 100 {
		clean = clean[len(clean)-100:]
	}
	return clean
}

func mediaType(contentType string) string {
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return parsed
}
