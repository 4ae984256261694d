package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository định nghĩa contract cho data access layer
type Repository interface {
	// ========================================
	// BASIC CRUD
	// ========================================

	// Create tạo user mới
	// Returns: ErrEmailAlreadyExists nếu email đã tồn tại
	Create(ctx context.Context, user *User) error

	// Returns: ErrUserNotFound nếu không tìm thấy
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)

	// Update ghi lại name, contact_info, image, google link
	Update(ctx context.Context, user *User) error

	// ========================================
	// PASSWORD RESET
	// ========================================

	// FindByResetToken trả về user kể cả khi token đã hết hạn; service tự kiểm tra
	FindByResetToken(ctx context.Context, token string) (*User, error)

	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// UpdatePassword cập nhật password và clear reset token
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error

	// ClearResetToken only clears when the stored token still equals token.
	ClearResetToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearExpiredResetTokens returns the number of rows cleared.
	ClearExpiredResetTokens(ctx context.Context, before time.Time) (int64, error)
}

// PendingSignupStore keeps unconfirmed registrations until the OTP expires.
type PendingSignupStore interface {
	Save(ctx context.Context, p *PendingSignup, ttl time.Duration) error
	// Returns: ErrSignupNotFound khi không còn
	Get(ctx context.Context, email string) (*PendingSignup, error)
	Delete(ctx context.Context, email string) error

	// RecordFailedAttempt returns the number of failures so far.
	RecordFailedAttempt(ctx context.Context, email string, ttl time.Duration) (int64, error)
}
