package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Warning is a side effect that failed without failing the primary operation.
type Warning struct {
	Step string
	Err  error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %v", w.Step, w.Err)
}

// Result carries the primary value of an operation alongside its non-fatal side-effect failures.
type Result[T any] struct {
	Value    T
	Warnings []Warning
}

// HasWarnings reports whether any side effect failed.
func (r Result[T]) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// diagnostics logs swallowed failures and mirrors them into the error_logs table.
type diagnostics struct {
	errorLogs repository.ErrorLogRepository
	logger    *zap.Logger
	now       func() time.Time
}

func (d diagnostics) record(ctx context.Context, source string, err error, fields map[string]any) {
	d.logger.Warn("side effect failed",
		zap.String("source", source),
		zap.Any("context", fields),
		zap.Error(err),
	)
	if d.errorLogs == nil {
		return
	}
	entry := &domain.ErrorLog{
		Source:    source,
		Message:   err.Error(),
		Context:   fields,
		CreatedAt: d.now(),
	}
	if logErr := d.errorLogs.Create(ctx, entry); logErr != nil {
		d.logger.Debug("error log write failed", zap.String("source", source), zap.Error(logErr))
	}
}

// warn records err and appends it to warnings.
func (d diagnostics) warn(ctx context.Context, warnings *[]Warning, step string, err error, fields map[string]any) {
	d.record(ctx, step, err, fields)
	*warnings = append(*warnings, Warning{Step: step, Err: err})
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		now = time.Now
	}
	return func() time.Time {
		return now().UTC().Truncate(time.Microsecond)
	}
}

// storeError translates a repository failure into the domain taxonomy.
func storeError(resource string, err error, details map[string]any) error {
	if apperrors.IsMissingRow(err) {
		return apperrors.NewNotFound(resource, details)
	}
	return apperrors.NewDependencyError("postgres", err)
}

// checkID rejects ids that cannot name a stored row. Every key column is a UUID.
func checkID(resource, id string, details map[string]any) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound(resource, details)
	}
	return nil
}

// resolveUser accepts either an email address or an opaque user id.
func resolveUser(ctx context.Context, users repository.UserRepository, identity string) (*domain.User, error) {
	identity = domain.NormalizeEmail(identity)
	if identity == "" {
		return nil, apperrors.NewValidationError("user identity is required", nil)
	}
	var (
		user *domain.User
		err  error
	)
	if isEmail(identity) {
		user, err = users.GetByEmail(ctx, identity)
	} else {
		if idErr := checkID("user", identity, map[string]any{"user": identity}); idErr != nil {
			return nil, idErr
		}
		user, err = users.GetByID(ctx, identity)
	}
	if err != nil {
		return nil, storeError("user", err, map[string]any{"user": identity})
	}
	return user, nil
}

func isEmail(s string) bool {
	return strings.ContainsRune(s, '@')
}
