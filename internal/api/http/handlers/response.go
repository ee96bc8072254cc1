package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func currentUser(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(out)
}

// withWarnings renders data, adding any side-effect failures under "warnings".
func withWarnings(data any, warnings []service.Warning) fiber.Map {
	body := fiber.Map{"data": data}
	if len(warnings) == 0 {
		return body
	}
	out := make([]dto.WarningResponse, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, dto.WarningResponse{Step: w.Step, Message: w.Err.Error()})
	}
	body["warnings"] = out
	return body
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func parseBool(val string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	return err == nil && parsed
}
