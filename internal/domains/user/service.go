package user

import (
	"context"

	"github.com/google/uuid"
)

// Service định nghĩa business logic layer contract
type Service interface {
	// Signup
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
	ResendOTP(ctx context.Context, req ResendOTPRequest) (*SignupResponse, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*UserDTO, error)

	// Session
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	GoogleLogin(ctx context.Context, req GoogleAuthRequest) (*Session, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)

	// Password reset
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error

	// Profile
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserDTO, error)
}
