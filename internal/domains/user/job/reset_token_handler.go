package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/shared"
	"writespace-backend/internal/shared/utils"
	"writespace-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// ExpireResetTokenHandler clears one reset token at its expiry instant. It
// is enqueued with asynq.ProcessAt by ForgotPassword.
type ExpireResetTokenHandler struct {
	userRepo user.Repository
}

func NewExpireResetTokenHandler(userRepo user.Repository) *ExpireResetTokenHandler {
	return &ExpireResetTokenHandler{userRepo: userRepo}
}

func (h *ExpireResetTokenHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ExpireResetTokenPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal ExpireResetToken payload failed", err)
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	userID := utils.ParseStringToUUID(payload.UserID)
	if userID == uuid.Nil || payload.Token == "" {
		return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
	}

	// No-op when the user already reset or requested a newer token
	if err := h.userRepo.ClearResetToken(ctx, userID, payload.Token); err != nil {
		return err
	}

	log.Debug().Str("user_id", payload.UserID).Msg("Reset token expired")
	return nil
}

// CleanupExpiredTokenHandler is the periodic sweep for reset tokens whose
// expiry task never ran.
type CleanupExpiredTokenHandler struct {
	userRepo user.Repository
	now      func() time.Time
}

func NewCleanupExpiredTokenHandler(userRepo user.Repository) *CleanupExpiredTokenHandler {
	return &CleanupExpiredTokenHandler{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (h *CleanupExpiredTokenHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CleanupExpiredTokensPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			logger.Error("Unmarshal CleanupExpiredTokens payload failed", err)
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	cutoff := h.now()
	if !payload.Before.IsZero() {
		cutoff = payload.Before
	}

	log.Info().
		Time("cutoff", cutoff).
		Msg("Starting cleanup of expired reset tokens")

	cleared, err := h.userRepo.ClearExpiredResetTokens(ctx, cutoff)
	if err != nil {
		logger.Error("Clear expired reset tokens failed", err)
		return err
	}

	log.Info().
		Int64("reset_tokens_cleared", cleared).
		Msg("Successfully cleaned up expired tokens")
	return nil
}
