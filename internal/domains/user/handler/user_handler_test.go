package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"writespace-backend/internal/config"
	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService overrides only what each test needs; the embedded nil
// interface panics on anything else.
type stubService struct {
	user.Service
	refresh func(token string) (string, error)
	login   func(req user.LoginRequest) (*user.Session, error)
	verify  func(req user.VerifyOTPRequest) (*user.UserDTO, error)
}

func (s *stubService) RefreshAccessToken(_ context.Context, token string) (string, error) {
	return s.refresh(token)
}

func (s *stubService) Login(_ context.Context, req user.LoginRequest) (*user.Session, error) {
	return s.login(req)
}

func (s *stubService) VerifyOTP(_ context.Context, req user.VerifyOTPRequest) (*user.UserDTO, error) {
	return s.verify(req)
}

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(svc user.Service) *gin.Engine {
	h := NewUserHandler(svc, config.CookieConfig{Secure: true}, 7*24*time.Hour, 10*time.Minute)
	r := gin.New()
	r.POST("/refresh-token", h.RefreshToken)
	r.POST("/login", h.Login)
	r.POST("/verifyOtp", h.VerifyOTP)
	r.POST("/logout", h.Logout)
	return r
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRefreshToken_Success(t *testing.T) {
	var seen string
	r := newRouter(&stubService{refresh: func(token string) (string, error) {
		seen = token
		return "new-access", nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshCookieName, Value: "refresh-abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh-abc", seen)

	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.JSONEq(t, `{"token":"new-access"}`, string(b.Data))

	// Never rotates the refresh cookie
	assert.Nil(t, findCookie(w, middleware.RefreshCookieName))
}

func TestRefreshToken_Failures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantCleared bool
	}{
		{"missing cookie", user.ErrRefreshTokenMissing, http.StatusUnauthorized, "No refresh token provided", false},
		{"expired", user.ErrRefreshTokenExpired, http.StatusUnauthorized, "Refresh token expired", true},
		{"invalid", user.ErrRefreshTokenInvalid, http.StatusUnauthorized, "Invalid refresh token", false},
		{"blocked", user.ErrUserBlocked, http.StatusForbidden, user.ErrUserBlocked.Error(), false},
		{"signing failure", errors.New("boom"), http.StatusInternalServerError, "Internal server error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubService{refresh: func(string) (string, error) { return "", tt.err }})

			req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var b body
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
			assert.False(t, b.Success)
			assert.Equal(t, tt.wantMessage, b.Message)

			cookie := findCookie(w, middleware.RefreshCookieName)
			if tt.wantCleared {
				require.NotNil(t, cookie)
				assert.Empty(t, cookie.Value)
				assert.True(t, cookie.MaxAge < 0)
			} else {
				assert.Nil(t, cookie)
			}
		})
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	r := newRouter(&stubService{login: func(req user.LoginRequest) (*user.Session, error) {
		return &user.Session{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			User:         user.UserDTO{Email: req.Email},
		}, nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	cookie := findCookie(w, middleware.RefreshCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 7*24*3600, cookie.MaxAge)

	// Refresh token stays out of the body
	assert.NotContains(t, w.Body.String(), "refresh-1")
	assert.Contains(t, w.Body.String(), `"token":"access-1"`)
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{user.ErrUserNotFound, http.StatusNotFound},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{user.ErrUserBlocked, http.StatusForbidden},
	}
	for _, tt := range tests {
		r := newRouter(&stubService{login: func(user.LoginRequest) (*user.Session, error) { return nil, tt.err }})

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"ana@example.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tt.want, w.Code, tt.err.Error())
		assert.Nil(t, findCookie(w, middleware.RefreshCookieName))
	}
}

func TestVerifyOTP_FallsBackToSignupCookie(t *testing.T) {
	var got user.VerifyOTPRequest
	r := newRouter(&stubService{verify: func(req user.VerifyOTPRequest) (*user.UserDTO, error) {
		got = req
		return &user.UserDTO{Email: req.Email}, nil
	}})

	req := httptest.NewRequest(http.MethodPost, "/verifyOtp", strings.NewReader(`{"otp":"1234"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: signupEmailCookie, Value: "ana@example.com"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana@example.com", got.Email)

	cleared := findCookie(w, signupEmailCookie)
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, middleware.RefreshCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.MaxAge < 0)
}
