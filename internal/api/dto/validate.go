package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	enum := func(valid func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool { return valid(fl.Field().String()) }
	}
	_ = v.RegisterValidation("category", enum(func(s string) bool { return domain.Category(s).Valid() }))
	_ = v.RegisterValidation("priority", enum(func(s string) bool { return domain.TicketPriority(s).Valid() }))
	_ = v.RegisterValidation("status", enum(func(s string) bool { return domain.TicketStatus(s).Valid() }))
	_ = v.RegisterValidation("role", enum(func(s string) bool { return domain.Role(s).Valid() }))
	return v
}

// Validate checks struct tags and reports every failing field in one ValidationError.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	details := make(map[string]any, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return apperrors.NewValidationError("invalid fields: "+strings.Join(names, ", "), details)
}
