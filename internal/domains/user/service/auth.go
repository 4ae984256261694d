package service

import (
	"context"
	"errors"
	"fmt"

	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/infrastructure/google"
	"writespace-backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ========================================
// SIGNUP + OTP
// ========================================

// Signup lưu pending signup vào Redis và gửi OTP qua email (async).
// User chỉ được tạo trong DB sau khi VerifyOTP thành công.
func (s *userService) Signup(ctx context.Context, req user.SignupRequest) (*user.SignupResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := user.NormalizeEmail(req.Email)

	// 2. BUSINESS RULE: email chưa được đăng ký
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailAlreadyExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	// 3. HASH PASSWORD
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	pending := &user.PendingSignup{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		ContactInfo:  req.ContactInfo,
	}

	// 4. OTP + PERSIST + EMAIL
	if err := s.issueOTP(ctx, pending); err != nil {
		return nil, err
	}

	return &user.SignupResponse{
		Email:             pending.Email,
		OTPExpiry:         pending.OTPExpiresAt,
		ResendAvailableAt: pending.ResendAvailableAt,
	}, nil
}

// ResendOTP phát OTP mới cho pending signup, tôn trọng cooldown.
func (s *userService) ResendOTP(ctx context.Context, req user.ResendOTPRequest) (*user.SignupResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pending, err := s.signups.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if s.now().Before(pending.ResendAvailableAt) {
		return nil, user.ErrResendTooSoon
	}

	if err := s.issueOTP(ctx, pending); err != nil {
		return nil, err
	}

	return &user.SignupResponse{
		Email:             pending.Email,
		OTPExpiry:         pending.OTPExpiresAt,
		ResendAvailableAt: pending.ResendAvailableAt,
	}, nil
}

// VerifyOTP xác nhận OTP và tạo user thật trong DB.
func (s *userService) VerifyOTP(ctx context.Context, req user.VerifyOTPRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. LOAD PENDING SIGNUP
	pending, err := s.signups.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	// 2. CHECK OTP
	if !s.now().Before(pending.OTPExpiresAt) {
		return nil, user.ErrOTPExpired
	}
	if pending.OTP != req.OTP {
		attempts, err := s.signups.RecordFailedAttempt(ctx, pending.Email, s.signup.OTPExpiry)
		if err != nil {
			log.Warn().Err(err).Str("email", pending.Email).Msg("Failed to record OTP attempt")
		}
		if attempts >= maxOTPAttempts {
			_ = s.signups.Delete(ctx, pending.Email)
			return nil, user.ErrTooManyAttempts
		}
		return nil, user.ErrOTPInvalid
	}

	// 3. CREATE USER (email có thể đã bị đăng ký trong lúc chờ OTP)
	newUser := &user.User{
		Email:        pending.Email,
		PasswordHash: &pending.PasswordHash,
		Name:         pending.Name,
		ContactInfo:  pending.ContactInfo,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			_ = s.signups.Delete(ctx, pending.Email)
		}
		return nil, err
	}

	// 4. CLEANUP
	if err := s.signups.Delete(ctx, pending.Email); err != nil {
		log.Warn().Err(err).Str("email", pending.Email).Msg("Failed to delete pending signup")
	}

	log.Info().Str("user_id", newUser.ID.String()).Msg("User registered")

	dto := newUser.ToDTO()
	return &dto, nil
}

// issueOTP generates a fresh OTP, saves the pending signup and enqueues the
// email. The pending record outlives the OTP by nothing: both expire together.
func (s *userService) issueOTP(ctx context.Context, pending *user.PendingSignup) error {
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	pending.OTP = otp
	pending.OTPExpiresAt = now.Add(s.signup.OTPExpiry)
	pending.ResendAvailableAt = now.Add(s.signup.ResendCooldown)

	if err := s.signups.Save(ctx, pending, s.signup.OTPExpiry); err != nil {
		return err
	}

	payload := shared.SignupOTPPayload{
		Email:     pending.Email,
		Name:      pending.Name,
		OTP:       otp,
		ExpiresIn: humanizeDuration(s.signup.OTPExpiry),
	}
	if err := s.queue.Enqueue(ctx, shared.TypeSendSignupOTP, payload, asynq.Queue(shared.QueueCritical)); err != nil {
		return fmt.Errorf("enqueue otp email: %w", err)
	}
	return nil
}

// ========================================
// SESSION
// ========================================

// Login xác thực email/password và cấp access + refresh token
func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. FIND USER
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	// 2. CHECK PASSWORD
	if !u.HasPassword() {
		return nil, user.ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// 3. CHECK STATUS
	if !u.IsActive {
		return nil, user.ErrUserBlocked
	}

	// 4. ISSUE TOKENS
	return s.newSession(ctx, u)
}

// GoogleLogin verifies a Google ID token, then links it to an existing
// account by email or creates a federated user.
func (s *userService) GoogleLogin(ctx context.Context, req user.GoogleAuthRequest) (*user.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.google.Verify(ctx, req.Credential)
	if err != nil {
		if errors.Is(err, google.ErrInvalidIDToken) {
			return nil, user.ErrGoogleAuthFailed
		}
		return nil, fmt.Errorf("verify google token: %w", err)
	}

	u, isNew, err := s.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserBlocked
	}

	session, err := s.newSession(ctx, u)
	if err != nil {
		return nil, err
	}
	session.IsNewUser = isNew
	return session, nil
}

func (s *userService) findOrCreateGoogleUser(ctx context.Context, id *google.Identity) (*user.User, bool, error) {
	// 1. Đã liên kết Google trước đó
	u, err := s.repo.FindByGoogleID(ctx, id.Subject)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, false, err
	}

	// 2. Có account cùng email: liên kết
	u, err = s.repo.FindByEmail(ctx, id.Email)
	if err == nil {
		u.IsGoogleUser = true
		u.GoogleID = &id.Subject
		if err := s.repo.Update(ctx, u); err != nil {
			return nil, false, err
		}
		return u, false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, false, err
	}

	// 3. User mới, không có password
	name := id.Name
	if name == "" {
		name = id.Email
	}
	u = &user.User{
		Email:        id.Email,
		Name:         name,
		IsActive:     true,
		IsGoogleUser: true,
		GoogleID:     &id.Subject,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, false, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("Google user registered")
	return u, true, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// refresh token itself is never reissued.
func (s *userService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", user.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", user.ErrRefreshTokenExpired
		}
		log.Debug().Err(err).Msg("Refresh token rejected")
		return "", user.ErrRefreshTokenInvalid
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", user.ErrRefreshTokenInvalid
	}

	// Blocked or vanished accounts cannot keep a session alive
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", user.ErrRefreshTokenInvalid
		}
		return "", err
	}
	if !u.IsActive {
		return "", user.ErrUserBlocked
	}

	token, err := s.tokens.GenerateAccessToken(u.ID.String())
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}
