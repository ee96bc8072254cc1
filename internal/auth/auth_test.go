package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type stubUsers struct {
	users map[string]domain.User
}

func (s stubUsers) GetByID(context.Context, string) (*domain.User, error) { return nil, pgx.ErrNoRows }

func (s stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (s stubUsers) ListByRoles(context.Context, []domain.Role) ([]domain.User, error) {
	return nil, nil
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expires, err := tm.GenerateToken(" HR1@Example.com ", domain.RoleHROwner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "hr1@example.com", claims.Email)
	assert.Equal(t, domain.RoleHROwner, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken("a@example.com", domain.RoleEmployee)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 1).ParseToken(token)
	assert.Error(t, err)
}

func errorHandler(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Code})
}

func TestServiceAuth(t *testing.T) {
	app := fiber.New()
	app.Post("/dispatch", ServiceAuth("s3cret"), func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok || !p.Service {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendStatus(http.StatusOK)
	})
	signed, _, err := NewTokenManager("s3cret", 5).GenerateToken("svc@example.com", "")
	require.NoError(t, err)
	forged, _, err := NewTokenManager("nope", 5).GenerateToken("svc@example.com", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "raw secret", header: "Bearer s3cret", want: http.StatusOK},
		{name: "signed jwt", header: "Bearer " + signed, want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer s3cret", want: http.StatusOK},
		{name: "wrong secret", header: "Bearer s3cret2", want: http.StatusUnauthorized},
		{name: "forged jwt", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "missing", header: "", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/dispatch", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusUnauthorized {
				body, _ := io.ReadAll(resp.Body)
				assert.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
			}
		})
	}
}

func TestAuthMiddlewareAndRoles(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	users := stubUsers{users: map[string]domain.User{
		"hr1@example.com":   {ID: "u-1", Email: "hr1@example.com", Role: domain.RoleHROwner},
		"alice@example.com": {ID: "u-2", Email: "alice@example.com", Role: domain.RoleEmployee},
		"boss@example.com":  {ID: "u-3", Email: "boss@example.com", Role: domain.RoleOwner},
	}}
	mw := NewAuthMiddleware(tm, users)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) }
	app.Get("/staff", mw.Handle, RequireStaff(), ok)
	app.Get("/owner", mw.Handle, RequireRole(domain.RoleOwner), ok)

	token := func(email string, role domain.Role) string {
		s, _, err := tm.GenerateToken(email, role)
		require.NoError(t, err)
		return "Bearer " + s
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "staff allowed", path: "/staff", header: token("hr1@example.com", domain.RoleHROwner), want: http.StatusNoContent},
		{name: "employee not staff", path: "/staff", header: token("alice@example.com", domain.RoleEmployee), want: http.StatusForbidden},
		{name: "role claim ignored", path: "/owner", header: token("alice@example.com", domain.RoleOwner), want: http.StatusForbidden},
		{name: "owner allowed", path: "/owner", header: token("boss@example.com", domain.RoleOwner), want: http.StatusNoContent},
		{name: "unknown user", path: "/staff", header: token("ghost@example.com", domain.RoleOwner), want: http.StatusUnauthorized},
		{name: "garbage token", path: "/staff", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "no header", path: "/staff", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
