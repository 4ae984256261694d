package main

import (
	"fmt"

	"github.com/hibiken/asynq"

	userJob "writespace-backend/internal/domains/user/job"
	"writespace-backend/internal/infrastructure/email"
	emailjob "writespace-backend/internal/infrastructure/email/job"
	"writespace-backend/internal/shared"
	"writespace-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Email handlers
	signupOTP     *emailjob.SignupOTPHandler
	resetPassword *emailjob.ResetPasswordEmailHandler
	resetSuccess  *emailjob.ResetSuccessHandler

	// Reset-token maintenance
	expireResetToken *userJob.ExpireResetTokenHandler
	cleanupTokens    *userJob.CleanupExpiredTokenHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) (*HandlerRegistry, error) {
	sender, err := email.NewSMTPSender(c.Config.SMTP)
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}

	return &HandlerRegistry{
		signupOTP:     emailjob.NewSignupOTPHandler(sender),
		resetPassword: emailjob.NewResetPasswordEmailHandler(sender),
		resetSuccess:  emailjob.NewResetSuccessHandler(sender),

		expireResetToken: userJob.NewExpireResetTokenHandler(c.UserRepo),
		cleanupTokens:    userJob.NewCleanupExpiredTokenHandler(c.UserRepo),
	}, nil
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Email tasks
	mux.HandleFunc(shared.TypeSendSignupOTP, h.signupOTP.ProcessTask)
	mux.HandleFunc(shared.TypeSendResetEmail, h.resetPassword.ProcessTask)
	mux.HandleFunc(shared.TypeSendResetSuccess, h.resetSuccess.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeExpireResetToken, h.expireResetToken.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupExpiredTokens, h.cleanupTokens.ProcessTask)
}
