package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Domains under .invalid never resolve, so these only pass on a syntax check.
func TestEmailRules_SyntaxOnly(t *testing.T) {
	const email = "ana@writespace.invalid"

	assert.NoError(t, SignupRequest{Name: "Ana", Email: email, Password: "Secret123"}.Validate())
	assert.NoError(t, ResendOTPRequest{Email: email}.Validate())
	assert.NoError(t, VerifyOTPRequest{OTP: "1234", Email: email}.Validate())
	assert.NoError(t, LoginRequest{Email: email, Password: "x"}.Validate())
	assert.NoError(t, ForgotPasswordRequest{Email: email}.Validate())
}

func TestEmailRules_RejectMalformed(t *testing.T) {
	for _, email := range []string{"ana", "ana@", "@example.com", "ana example.com"} {
		assert.Error(t, LoginRequest{Email: email, Password: "x"}.Validate(), email)
		assert.Error(t, ForgotPasswordRequest{Email: email}.Validate(), email)
	}
}
