package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"writespace-backend/internal/config"
	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/infrastructure/storage"
	"writespace-backend/internal/shared/middleware"
	"writespace-backend/internal/shared/response"
	"writespace-backend/internal/shared/utils"
)

const signupEmailCookie = "signupEmail"

// UserHandler xử lý HTTP requests cho user domain
type UserHandler struct {
	service    user.Service
	cookies    config.CookieConfig
	refreshTTL time.Duration
	signupTTL  time.Duration
}

func NewUserHandler(
	service user.Service,
	cookies config.CookieConfig,
	refreshTTL time.Duration,
	signupTTL time.Duration,
) *UserHandler {
	return &UserHandler{
		service:    service,
		cookies:    cookies,
		refreshTTL: refreshTTL,
		signupTTL:  signupTTL,
	}
}

// ========================================
// SIGNUP ENDPOINTS
// ========================================

// Signup xử lý POST /signup
func (h *UserHandler) Signup(c *gin.Context) {
	// STEP 1: PARSE REQUEST
	var req user.SignupRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	// STEP 2: CALL SERVICE
	res, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// STEP 3: REMEMBER EMAIL FOR VERIFY/RESEND
	h.setCookie(c, signupEmailCookie, res.Email, h.signupTTL)

	response.Success(c, http.StatusOK, "OTP sent to your email", res)
}

// ResendOTP xử lý POST /resend-otp
func (h *UserHandler) ResendOTP(c *gin.Context) {
	var req user.ResendOTPRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}
	if req.Email == "" {
		req.Email, _ = c.Cookie(signupEmailCookie)
	}

	res, err := h.service.ResendOTP(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setCookie(c, signupEmailCookie, res.Email, h.signupTTL)
	response.Success(c, http.StatusOK, "A new OTP has been sent to your email", res)
}

// VerifyOTP xử lý POST /verifyOtp
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req user.VerifyOTPRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}
	if req.Email == "" {
		req.Email, _ = c.Cookie(signupEmailCookie)
	}

	dto, err := h.service.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.clearCookie(c, signupEmailCookie)
	response.Success(c, http.StatusCreated, "User registered successfully", gin.H{"user": dto})
}

// ========================================
// SESSION ENDPOINTS
// ========================================

// Login xử lý POST /login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Refresh token chỉ nằm trong HttpOnly cookie
	h.setCookie(c, middleware.RefreshCookieName, session.RefreshToken, h.refreshTTL)

	response.Success(c, http.StatusOK, "Login successful", user.LoginResponse{
		Token: session.AccessToken,
		User:  session.User,
	})
}

// GoogleAuth xử lý POST /google-auth
func (h *UserHandler) GoogleAuth(c *gin.Context) {
	var req user.GoogleAuthRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	session, err := h.service.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setCookie(c, middleware.RefreshCookieName, session.RefreshToken, h.refreshTTL)

	isNew := session.IsNewUser
	response.Success(c, http.StatusOK, "Login successful", user.LoginResponse{
		Token:     session.AccessToken,
		User:      session.User,
		IsNewUser: &isNew,
	})
}

// RefreshToken xử lý POST /refresh-token. Refresh token đọc từ cookie, không
// phải body, và không bao giờ được cấp lại ở đây.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshCookieName)

	token, err := h.service.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		// Expired: client must log in again, drop the dead cookie
		if errors.Is(err, user.ErrRefreshTokenExpired) {
			h.clearCookie(c, middleware.RefreshCookieName)
		}
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed", user.RefreshResponse{Token: token})
}

// Logout xử lý POST /logout
func (h *UserHandler) Logout(c *gin.Context) {
	h.clearCookie(c, middleware.RefreshCookieName)
	response.Success(c, http.StatusOK, "Logged out successfully", nil)
}

// ========================================
// PASSWORD RESET ENDPOINTS
// ========================================

// ForgotPassword xử lý POST /forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password reset link sent to your email", nil)
}

// ValidateResetToken xử lý GET /validate-reset-token/:token
func (h *UserHandler) ValidateResetToken(c *gin.Context) {
	if err := h.service.ValidateResetToken(c.Request.Context(), c.Param("token")); err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Token is valid", gin.H{"isValid": true})
}

// ResetPassword xử lý POST /reset-password/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := h.bindJSON(c, &req); err != nil {
		return
	}
	req.Token = c.Param("token")

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Password has been reset successfully", nil)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetProfile xử lý GET /profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", gin.H{"user": dto})
}

// UpdateProfile xử lý PUT /profile (multipart: name, contactinfo, image)
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	// STEP 1: PARSE MULTIPART FORM
	var req user.UpdateProfileRequest
	if name, ok := c.GetPostForm("name"); ok {
		req.Name = &name
	}
	if contact, ok := c.GetPostForm("contactinfo"); ok {
		req.ContactInfo = &contact
	}
	if fh, err := c.FormFile("image"); err == nil {
		data, err := utils.ReadFormFile(fh, storage.DefaultMaxImageSize)
		if err != nil {
			h.handleError(c, err)
			return
		}
		req.Image = data
	}

	// STEP 2: CALL SERVICE
	dto, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", gin.H{"user": dto})
}

// ========================================
// HELPER FUNCTIONS
// ========================================

// getUserIDFromContext lấy user ID mà middleware Authenticate đã set
func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return userID, nil
}

func (h *UserHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *UserHandler) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", h.cookies.Domain, h.cookies.Secure, true)
}

// handleError map domain errors thành HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors

	switch {
	// 400 Bad Request
	case errors.As(err, &verrs):
		response.ValidationError(c, verrs)
	case errors.Is(err, user.ErrEmailAlreadyExists),
		errors.Is(err, user.ErrSignupNotFound),
		errors.Is(err, user.ErrOTPExpired),
		errors.Is(err, user.ErrOTPInvalid),
		errors.Is(err, user.ErrPasswordNotSet),
		errors.Is(err, user.ErrResetTokenInvalid),
		errors.Is(err, user.ErrNoChanges),
		errors.Is(err, user.ErrInvalidImage),
		errors.Is(err, utils.ErrFileTooLarge):
		response.BadRequest(c, err.Error())

	// 401 Unauthorized
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrGoogleAuthFailed),
		errors.Is(err, user.ErrRefreshTokenMissing),
		errors.Is(err, user.ErrRefreshTokenExpired),
		errors.Is(err, user.ErrRefreshTokenInvalid):
		response.Unauthorized(c, err.Error())

	// 403 Forbidden
	case errors.Is(err, user.ErrUserBlocked):
		response.Forbidden(c, err.Error())

	// 404 Not Found
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, "User not found")

	// 429 Too Many Requests
	case errors.Is(err, user.ErrTooManyAttempts),
		errors.Is(err, user.ErrResendTooSoon):
		response.TooManyRequests(c, err.Error())

	// 500 Internal Server Error
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.ContextKeyRequestID)).
			Str("path", c.FullPath()).
			Msg("Unhandled user error")
		response.InternalServerError(c, "Internal server error")
	}
}

func (h *UserHandler) bindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return err
	}
	return nil
}
