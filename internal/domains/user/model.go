package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User là domain entity - ánh xạ 1:1 với bảng users
type User struct {
	ID    uuid.UUID
	Email string

	// nil for accounts created through Google sign-in
	PasswordHash *string

	Name        string
	ContactInfo string
	IsActive    bool

	// Image is the avatar object key, never a URL.
	Image *string

	IsGoogleUser bool
	GoogleID     *string

	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether password login is possible for this account.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// ResetTokenValid reports whether token matches the stored one and is unexpired.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetPasswordToken == nil || u.ResetPasswordExpires == nil {
		return false
	}
	return *u.ResetPasswordToken == token && now.Before(*u.ResetPasswordExpires)
}

// PendingSignup holds a registration waiting for OTP confirmation. It lives
// only in Redis and expires with the OTP.
type PendingSignup struct {
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"passwordHash"`
	ContactInfo       string    `json:"contactInfo"`
	OTP               string    `json:"otp"`
	OTPExpiresAt      time.Time `json:"otpExpiresAt"`
	ResendAvailableAt time.Time `json:"resendAvailableAt"`
}

// NormalizeEmail lowercases and trims; every lookup and insert goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
