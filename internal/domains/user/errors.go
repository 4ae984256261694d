package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("This email is already registered.")
	ErrSignupNotFound     = errors.New("Signup session expired. Please sign up again.")
)

// Service-level (Business logic) errors
var (
	// Authentication
	ErrInvalidCredentials = errors.New("Invalid password")
	ErrUserBlocked        = errors.New("Your account has been blocked by admin")
	ErrPasswordNotSet     = errors.New("This account uses Google sign-in")
	ErrGoogleAuthFailed   = errors.New("Google authentication failed")

	// Refresh exchange
	ErrRefreshTokenMissing = errors.New("No refresh token provided")
	ErrRefreshTokenExpired = errors.New("Refresh token expired")
	ErrRefreshTokenInvalid = errors.New("Invalid refresh token")

	// OTP
	ErrOTPExpired      = errors.New("The OTP has expired. Please request a new one.")
	ErrOTPInvalid      = errors.New("The provided OTP is invalid.")
	ErrTooManyAttempts = errors.New("Too many incorrect attempts. Please sign up again.")
	ErrResendTooSoon   = errors.New("Please wait before requesting a new OTP.")

	// Password reset
	ErrResetTokenInvalid = errors.New("Password reset token is invalid or has expired")

	// Profile
	ErrNoChanges    = errors.New("No changes to update")
	ErrInvalidImage = errors.New("Invalid image file")
)
