package shared

import "time"

// Asynq task types. Producers live in the API, consumers in cmd/worker.
const (
	TypeSendSignupOTP        = "email:signup_otp"
	TypeSendResetEmail       = "email:reset_password"
	TypeSendResetSuccess     = "email:reset_password_success"
	TypeExpireResetToken     = "auth:expire_reset_token"
	TypeCleanupExpiredTokens = "auth:cleanup_expired_tokens"
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type SignupOTPPayload struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	OTP       string `json:"otp"`
	ExpiresIn string `json:"expiresIn"`
}

type ResetEmailPayload struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	ResetLink string `json:"resetLink"`
	ExpiresIn string `json:"expiresIn"`
}

type ResetSuccessPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExpireResetTokenPayload clears one reset token once its expiry passes.
// Token guards against clearing a newer token issued after this task.
type ExpireResetTokenPayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type CleanupExpiredTokensPayload struct {
	Before time.Time `json:"before,omitempty"`
}
