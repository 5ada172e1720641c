package service

import (
	"testing"

	"github.com/accountd/accountd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidator_ValidRegister(t *testing.T) {
	v := newRequestValidator(8)

	err := v.validateRegister(models.RegisterRequest{
		Username: "john",
		Email:    "john@example.com",
		Password: "long-enough",
	})
	require.NoError(t, err)
}

func TestRequestValidator_CollectsEveryViolation(t *testing.T) {
	v := newRequestValidator(8)

	err := v.validateRegister(models.RegisterRequest{
		Username: "jo",
		Email:    "nope",
		Password: "short",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 3)
}

func TestRequestValidator_RequiredMessages(t *testing.T) {
	v := newRequestValidator(8)

	err := v.validateRegister(models.RegisterRequest{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 3)
	for _, violation := range validationErr.Violations {
		assert.Equal(t, "is required", violation.Message)
	}
}

func TestRequestValidator_PasswordLengthIsConfigurable(t *testing.T) {
	strict := newRequestValidator(12)

	err := strict.validateNewPassword("elevenchars")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	require.NoError(t, strict.validateNewPassword("twelve chars"))
}

func TestRequestValidator_ValidateEmail(t *testing.T) {
	v := newRequestValidator(8)

	require.NoError(t, v.validateEmail("john@example.com"))

	err := v.validateEmail("not-an-email")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 1)
	assert.Equal(t, "email", validationErr.Violations[0].Field)
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "John Doe", want: "John Doe"},
		{name: "surrounding whitespace", input: "  John Doe \t", want: "John Doe"},
		{name: "html metacharacters", input: `<b>John & "Doe"</b>`, want: "&lt;b&gt;John &amp; &#34;Doe&#34;&lt;/b&gt;"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@example.com", normalizeEmail("  John@EXAMPLE.com "))
}
