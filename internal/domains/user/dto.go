package user

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

var (
	otpPattern      = regexp.MustCompile(`^[0-9]{4}$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	resetTokenRegex = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("password is required"),
		validation.Length(8, 128).Error("password must be 8-128 characters"),
		validation.Match(upperPattern).Error("password must contain at least one uppercase letter"),
		validation.Match(lowerPattern).Error("password must contain at least one lowercase letter"),
		validation.Match(digitPattern).Error("password must contain at least one number"),
	}
}

// ========================================
// SIGNUP DTOs
// ========================================

type SignupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	ContactInfo string `json:"contactinfo"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.ContactInfo, validation.Length(0, 20)),
	)
}

type SignupResponse struct {
	Email             string    `json:"email"`
	OTPExpiry         time.Time `json:"otpExpiry"`
	ResendAvailableAt time.Time `json:"resendAvailableAt"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (r ResendOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat),
	)
}

type VerifyOTPRequest struct {
	OTP   string `json:"otp"`
	Email string `json:"email"`
}

func (r VerifyOTPRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OTP,
			validation.Required.Error("otp is required"),
			validation.Match(otpPattern).Error("otp must be 4 digits"),
		),
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat),
	)
}

// ========================================
// SESSION DTOs
// ========================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type GoogleAuthRequest struct {
	Credential string `json:"credential"`
}

func (r GoogleAuthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Credential, validation.Required.Error("credential is required")),
	)
}

// Session is what the service hands back after a successful login. The
// handler puts RefreshToken in an HttpOnly cookie and never in the body.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         UserDTO
	IsNewUser    bool
}

type LoginResponse struct {
	Token     string  `json:"token"`
	User      UserDTO `json:"user"`
	IsNewUser *bool   `json:"isNewUser,omitempty"`
}

type RefreshResponse struct {
	Token string `json:"token"`
}

// ========================================
// PASSWORD RESET DTOs
// ========================================

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat),
	)
}

type ResetPasswordRequest struct {
	Token    string `json:"-"`
	Password string `json:"password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Match(resetTokenRegex).Error("invalid reset token")),
		validation.Field(&r.Password, passwordRules()...),
	)
}

// ========================================
// PROFILE DTOs
// ========================================

// UserDTO - Public user representation (safe to expose)
type UserDTO struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ContactInfo  string    `json:"contactinfo"`
	Image        string    `json:"image,omitempty"`
	IsActive     bool      `json:"isActive"`
	IsGoogleUser bool      `json:"isGoogleUser"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToDTO converts User entity to UserDTO. Image stays empty; the service
// fills it with a signed URL.
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		ContactInfo:  u.ContactInfo,
		IsActive:     u.IsActive,
		IsGoogleUser: u.IsGoogleUser,
		CreatedAt:    u.CreatedAt,
	}
}

// UpdateProfileRequest comes from a multipart form. Nil fields are untouched.
type UpdateProfileRequest struct {
	Name        *string
	ContactInfo *string
	Image       []byte
}

func (r UpdateProfileRequest) Validate() error {
	if r.Name == nil && r.ContactInfo == nil && len(r.Image) == 0 {
		return ErrNoChanges
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.When(r.Name != nil,
			validation.Required.Error("name cannot be empty"),
			validation.Length(2, 100),
		)),
		validation.Field(&r.ContactInfo, validation.Length(0, 20)),
	)
}
