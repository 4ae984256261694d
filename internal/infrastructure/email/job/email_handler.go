package job

import (
	"context"
	"encoding/json"
	"fmt"

	"writespace-backend/internal/infrastructure/email"
	"writespace-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// ============================================
// Signup OTP
// ============================================

type SignupOTPHandler struct {
	sender email.Sender
}

func NewSignupOTPHandler(sender email.Sender) *SignupOTPHandler {
	return &SignupOTPHandler{sender: sender}
}

func (h *SignupOTPHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p shared.SignupOTPPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SignupOTP payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	msg, err := email.OTPMessage(p.Email, email.OTPData{Name: p.Name, OTP: p.OTP, ExpiresIn: p.ExpiresIn})
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return deliver(ctx, h.sender, msg, task.Type())
}

// ============================================
// Reset password link
// ============================================

type ResetPasswordEmailHandler struct {
	sender email.Sender
}

func NewResetPasswordEmailHandler(sender email.Sender) *ResetPasswordEmailHandler {
	return &ResetPasswordEmailHandler{sender: sender}
}

func (h *ResetPasswordEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p shared.ResetEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ResetPasswordEmail payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	msg, err := email.ResetPasswordMessage(p.Email, email.ResetPasswordData{
		Name:      p.Name,
		ResetLink: p.ResetLink,
		ExpiresIn: p.ExpiresIn,
	})
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return deliver(ctx, h.sender, msg, task.Type())
}

// ============================================
// Reset password confirmation
// ============================================

type ResetSuccessHandler struct {
	sender email.Sender
}

func NewResetSuccessHandler(sender email.Sender) *ResetSuccessHandler {
	return &ResetSuccessHandler{sender: sender}
}

func (h *ResetSuccessHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var p shared.ResetSuccessPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ResetSuccess payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	msg, err := email.ResetSuccessMessage(p.Email, email.ResetSuccessData{Name: p.Name})
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return deliver(ctx, h.sender, msg, task.Type())
}

// deliver returns the send error so asynq retries transient SMTP failures.
func deliver(ctx context.Context, sender email.Sender, msg email.Message, taskType string) error {
	log.Info().Str("task", taskType).Str("to", msg.To).Msg("Sending email")

	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", taskType, err)
	}

	log.Info().Str("task", taskType).Str("to", msg.To).Msg("Email sent")
	return nil
}
