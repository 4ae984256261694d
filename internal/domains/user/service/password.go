package service

import (
	"context"
	"errors"
	"fmt"

	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenBytes = 20

// ForgotPassword lưu reset token (hết hạn sau ResetExpiry), gửi email chứa
// link và hẹn một task xoá token đúng lúc hết hạn.
func (s *userService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	token, err := generateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.signup.ResetExpiry)

	if err := s.repo.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return err
	}

	emailPayload := shared.ResetEmailPayload{
		Email:     u.Email,
		Name:      u.Name,
		ResetLink: fmt.Sprintf("%s/forgot-password/%s", s.frontend, token),
		ExpiresIn: humanizeDuration(s.signup.ResetExpiry),
	}
	if err := s.queue.Enqueue(ctx, shared.TypeSendResetEmail, emailPayload, asynq.Queue(shared.QueueCritical)); err != nil {
		return fmt.Errorf("enqueue reset email: %w", err)
	}

	// The periodic sweep catches it anyway if this enqueue is lost
	expirePayload := shared.ExpireResetTokenPayload{UserID: u.ID.String(), Token: token}
	if err := s.queue.Enqueue(ctx, shared.TypeExpireResetToken, expirePayload,
		asynq.ProcessAt(expiresAt),
		asynq.Queue(shared.QueueLow),
	); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to schedule reset token expiry")
	}

	return nil
}

// ValidateResetToken reports ErrResetTokenInvalid for unknown or expired
// tokens; an expired one is cleared on the way out.
func (s *userService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.loadResetUser(ctx, token)
	return err
}

func (s *userService) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.loadResetUser(ctx, req.Token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return err
	}

	payload := shared.ResetSuccessPayload{Email: u.Email, Name: u.Name}
	if err := s.queue.Enqueue(ctx, shared.TypeSendResetSuccess, payload); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to enqueue reset success email")
	}
	return nil
}

func (s *userService) loadResetUser(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, user.ErrResetTokenInvalid
	}

	u, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrResetTokenInvalid
		}
		return nil, err
	}

	if !u.ResetTokenValid(token, s.now()) {
		if err := s.repo.ClearResetToken(ctx, u.ID, token); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to clear expired reset token")
		}
		return nil, user.ErrResetTokenInvalid
	}
	return u, nil
}
