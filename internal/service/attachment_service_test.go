package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func upload(name, contentType string, body []byte) FileUpload {
	return FileUpload{
		Name:        name,
		Size:        int64(len(body)),
		ContentType: contentType,
		Body:        bytes.NewReader(body),
	}
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    FileUpload
		wantErr bool
	}{
		{name: "pdf", file: FileUpload{Size: 1024, ContentType: "application/pdf"}},
		{name: "text with charset", file: FileUpload{Size: 10, ContentType: "text/plain; charset=utf-8"}},
		{name: "exactly at limit", file: FileUpload{Size: MaxAttachmentSize, ContentType: "image/png"}},
		{name: "over limit", file: FileUpload{Size: MaxAttachmentSize + 1, ContentType: "image/png"}, wantErr: true},
		{name: "empty", file: FileUpload{Size: 0, ContentType: "image/png"}, wantErr: true},
		{name: "executable", file: FileUpload{Size: 10, ContentType: "application/x-msdownload"}, wantErr: true},
		{name: "gif", file: FileUpload{Size: 10, ContentType: "image/gif"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.file)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUploadStoresBlobAndMetadata(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)

	res, err := h.attachmentSv.Upload(context.Background(), upload("../payslip march.pdf", "application/pdf", []byte("%PDF-1.4")), ticket.ID, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, res.HasWarnings())

	a := res.Value
	assert.Equal(t, "../payslip march.pdf", a.FileName)
	assert.Equal(t, int64(8), a.FileSize)
	assert.True(t, strings.HasPrefix(a.StorageKey, "tickets/"+ticket.ID+"/"))
	assert.True(t, strings.HasSuffix(a.StorageKey, "-payslip_march.pdf"))
	assert.Equal(t, "https://files.example.com/"+a.StorageKey, a.FileURL)
	assert.Equal(t, []byte("%PDF-1.4"), h.blobs.objects[a.StorageKey])

	list, err := h.attachmentSv.List(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	entries := h.auditLogs.byTicket(ticket.ID)
	assert.Equal(t, domain.AuditActionAttachmentAdded, entries[len(entries)-1].Action)
}

func TestUploadRejectedFileLeavesNoTrace(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)

	big := FileUpload{Name: "huge.png", Size: MaxAttachmentSize + 1, ContentType: "image/png", Body: strings.NewReader("x")}
	_, err := h.attachmentSv.Upload(context.Background(), big, ticket.ID, "alice@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.attachmentSv.Upload(context.Background(), upload("run.exe", "application/octet-stream", []byte("MZ")), ticket.ID, "alice@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	assert.Empty(t, h.blobs.objects)
	assert.Empty(t, h.attachments.items)
}

func TestUploadUnknownTicket(t *testing.T) {
	h := newHarness(t)
	_, err := h.attachmentSv.Upload(context.Background(), upload("a.txt", "text/plain", []byte("hi")), "missing", "alice@example.com")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, h.blobs.objects)
}

func TestUploadRemovesBlobWhenMetadataFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)
	h.attachments.createErr = errBoom

	_, err := h.attachmentSv.Upload(context.Background(), upload("a.txt", "text/plain", []byte("hi")), ticket.ID, "alice@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDependency))
	assert.Empty(t, h.blobs.objects)
	assert.Len(t, h.blobs.removed, 1)
}

func TestUploadStoreFailure(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)
	h.blobs.putErr = errBoom

	_, err := h.attachmentSv.Upload(context.Background(), upload("a.txt", "text/plain", []byte("hi")), ticket.ID, "alice@example.com")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDependency))
	assert.Empty(t, h.attachments.items)
}

func TestDeleteAttachment(t *testing.T) {
	h := newHarness(t)
	ticket := h.createTicket(t, domain.CategoryHR, domain.TicketPriorityLow)
	res, err := h.attachmentSv.Upload(context.Background(), upload("a.png", "image/png", []byte{0x89, 'P', 'N', 'G'}), ticket.ID, "alice@example.com")
	require.NoError(t, err)

	h.blobs.removeErr = errBoom
	deleted, err := h.attachmentSv.Delete(context.Background(), res.Value.ID, "hr1@example.com")
	require.NoError(t, err)
	require.Len(t, deleted.Warnings, 1)
	assert.Equal(t, "object storage", deleted.Warnings[0].Step)
	assert.Empty(t, h.attachments.items)

	entries := h.auditLogs.byTicket(ticket.ID)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.AuditActionAttachmentDeleted, last.Action)
	assert.Equal(t, "a.png", *last.OldValue)

	_, err = h.attachmentSv.Delete(context.Background(), res.Value.ID, "hr1@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report.pdf", sanitizeFileName("report.pdf"))
	assert.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "evil.txt", sanitizeFileName(`C:\temp\evil.txt`))
	assert.Equal(t, "file", sanitizeFileName("..."))
	assert.Equal(t, "my_file_1_.docx", sanitizeFileName("my file (1).docx"))
}
