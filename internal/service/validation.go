package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/accountd/accountd/models"
	"github.com/go-playground/validator/v10"
)

// minUsernameLength is the shortest accepted username.
const minUsernameLength = 3

// requestValidator checks incoming auth requests against the configured
// policy. Every rule is evaluated and every violation collected, so a client
// learns about all problems in one response.
type requestValidator struct {
	validate          *validator.Validate
	passwordMinLength int
}

func newRequestValidator(passwordMinLength int) *requestValidator {
	return &requestValidator{
		validate:          validator.New(validator.WithRequiredStructEnabled()),
		passwordMinLength: passwordMinLength,
	}
}

// validateRegister checks a registration request. Returns nil when the
// request is well-formed, otherwise a [ValidationError] listing every
// violation.
func (v *requestValidator) validateRegister(req models.RegisterRequest) error {
	var violations []FieldViolation

	violations = append(violations, v.check("username", req.Username,
		fmt.Sprintf("required,min=%d", minUsernameLength),
		fmt.Sprintf("must be at least %d characters", minUsernameLength))...)

	violations = append(violations, v.check("email", req.Email,
		"required,email", "must be a valid email address")...)

	violations = append(violations, v.check("password", req.Password,
		fmt.Sprintf("required,min=%d", v.passwordMinLength),
		fmt.Sprintf("must be at least %d characters", v.passwordMinLength))...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// validateNewPassword checks a replacement password against the same length
// rule registration uses.
func (v *requestValidator) validateNewPassword(password string) error {
	violations := v.check("new_password", password,
		fmt.Sprintf("required,min=%d", v.passwordMinLength),
		fmt.Sprintf("must be at least %d characters", v.passwordMinLength))

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// validateEmail checks a replacement email address from a profile update.
func (v *requestValidator) validateEmail(email string) error {
	violations := v.check("email", email,
		"required,email", "must be a valid email address")

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// check runs one field through a validation tag and translates the outcome
// into field violations. A missing value reports "is required" instead of the
// rule-specific message.
func (v *requestValidator) check(field, value, tag, message string) []FieldViolation {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldViolation{{Field: field, Message: message}}
	}

	violations := make([]FieldViolation, 0, len(errs))
	for _, fieldErr := range errs {
		if fieldErr.Tag() == "required" {
			violations = append(violations, FieldViolation{Field: field, Message: "is required"})
			continue
		}
		violations = append(violations, FieldViolation{Field: field, Message: message})
	}
	return violations
}

// sanitizeText normalises free-form text inputs: surrounding whitespace is
// trimmed and HTML metacharacters are escaped before storage.
func sanitizeText(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

// normalizeEmail lowercases and trims an email address so lookups and unique
// constraints are case-insensitive.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
