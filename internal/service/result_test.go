package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestResolveUserByEmailOrID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ops := h.users.add("ops@localhost", domain.RoleITOwner, h.clock.Now())

	byMail, err := resolveUser(ctx, h.users, " OPS@localhost ")
	require.NoError(t, err)
	assert.Equal(t, ops.ID, byMail.ID)

	byID, err := resolveUser(ctx, h.users, ops.ID)
	require.NoError(t, err)
	assert.Equal(t, "ops@localhost", byID.Email)

	_, err = resolveUser(ctx, h.users, "nobody@localhost")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = resolveUser(ctx, h.users, "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestIsEmailOnlyNeedsAtSign(t *testing.T) {
	assert.True(t, isEmail("ops@localhost"))
	assert.True(t, isEmail("a.b@example.com"))
	assert.False(t, isEmail("6f1c2a9e-4b7d-4e2a-9c31-5d8e7f0a1b23"))
	assert.False(t, isEmail("ops.example.com"))
}
