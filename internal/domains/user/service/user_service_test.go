package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"writespace-backend/internal/config"
	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/shared"
	jwtpkg "writespace-backend/pkg/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
	testPassword      = "Secret123"
)

// ========================================
// FAKES
// ========================================

type fakeRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[uuid.UUID]*user.User{}}
}

func (r *fakeRepo) add(u *user.User) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeRepo) find(match func(*user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	if _, err := r.FindByEmail(context.Background(), u.Email); err == nil {
		return user.ErrEmailAlreadyExists
	}
	u.CreatedAt = time.Now()
	r.add(u)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id })
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == user.NormalizeEmail(email) })
}

func (r *fakeRepo) FindByGoogleID(_ context.Context, googleID string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *fakeRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByResetToken(_ context.Context, token string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token })
}

func (r *fakeRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expiresAt
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = &hash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return nil
}

func (r *fakeRepo) ClearResetToken(_ context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok && u.ResetPasswordToken != nil && *u.ResetPasswordToken == token {
		u.ResetPasswordToken = nil
		u.ResetPasswordExpires = nil
	}
	return nil
}

func (r *fakeRepo) ClearExpiredResetTokens(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.ResetPasswordExpires != nil && u.ResetPasswordExpires.Before(before) {
			u.ResetPasswordToken = nil
			u.ResetPasswordExpires = nil
			n++
		}
	}
	return n, nil
}

type fakeSignups struct {
	pending  map[string]*user.PendingSignup
	attempts map[string]int64
}

func newFakeSignups() *fakeSignups {
	return &fakeSignups{pending: map[string]*user.PendingSignup{}, attempts: map[string]int64{}}
}

func (s *fakeSignups) Save(_ context.Context, p *user.PendingSignup, _ time.Duration) error {
	cp := *p
	s.pending[user.NormalizeEmail(p.Email)] = &cp
	return nil
}

func (s *fakeSignups) Get(_ context.Context, email string) (*user.PendingSignup, error) {
	p, ok := s.pending[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrSignupNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeSignups) Delete(_ context.Context, email string) error {
	delete(s.pending, user.NormalizeEmail(email))
	delete(s.attempts, user.NormalizeEmail(email))
	return nil
}

func (s *fakeSignups) RecordFailedAttempt(_ context.Context, email string, _ time.Duration) (int64, error) {
	s.attempts[user.NormalizeEmail(email)]++
	return s.attempts[user.NormalizeEmail(email)], nil
}

type enqueued struct {
	taskType string
	payload  interface{}
}

type recordingQueue struct {
	tasks []enqueued
}

func (q *recordingQueue) Enqueue(_ context.Context, taskType string, payload interface{}, _ ...asynq.Option) error {
	q.tasks = append(q.tasks, enqueued{taskType: taskType, payload: payload})
	return nil
}

func (q *recordingQueue) types() []string {
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.taskType)
	}
	return out
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// ========================================
// SETUP
// ========================================

type fixture struct {
	svc     *userService
	repo    *fakeRepo
	signups *fakeSignups
	queue   *recordingQueue
	store   *mockStore
	tokens  *jwtpkg.Manager
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := jwtpkg.NewManager(testAccessSecret, testRefreshSecret, 0, 0)
	require.NoError(t, err)

	f := &fixture{
		repo:    newFakeRepo(),
		signups: newFakeSignups(),
		queue:   &recordingQueue{},
		store:   &mockStore{},
		tokens:  tokens,
		clock:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewUserService(Dependencies{
		Repo:    f.repo,
		Signups: f.signups,
		Tokens:  tokens,
		Storage: f.store,
		Queue:   f.queue,
		Signup: config.SignupConfig{
			OTPExpiry:      10 * time.Minute,
			ResendCooldown: 60 * time.Second,
			ResetExpiry:    30 * time.Minute,
		},
		MinIO:    config.MinIOConfig{SignedURLTTL: 7 * 24 * time.Hour, ProfileFolder: "write-space/profile/"},
		Frontend: "http://localhost:5173",
	}).(*userService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) addUser(t *testing.T, email string, active bool) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	return f.repo.add(&user.User{Email: email, Name: "Ana", PasswordHash: &h, IsActive: active})
}

func signRefresh(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	claims := jwtpkg.Claims{
		UserID: userID,
		Type:   jwtpkg.TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testRefreshSecret))
	require.NoError(t, err)
	return token
}

// ========================================
// SIGNUP + OTP
// ========================================

func TestSignup_StoresPendingAndSendsOTP(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Signup(context.Background(), user.SignupRequest{
		Name: "Ana", Email: "Ana@Example.com", Password: testPassword,
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", res.Email)
	assert.Equal(t, f.clock.Add(10*time.Minute), res.OTPExpiry)
	assert.Equal(t, f.clock.Add(60*time.Second), res.ResendAvailableAt)

	pending, err := f.signups.Get(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^[1-9][0-9]{3}$`, pending.OTP)
	assert.NotEqual(t, testPassword, pending.PasswordHash)

	require.Equal(t, []string{shared.TypeSendSignupOTP}, f.queue.types())
	payload := f.queue.tasks[0].payload.(shared.SignupOTPPayload)
	assert.Equal(t, pending.OTP, payload.OTP)
	assert.Equal(t, "10 minutes", payload.ExpiresIn)
}

func TestSignup_EmailTaken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "ana@example.com", true)

	_, err := f.svc.Signup(context.Background(), user.SignupRequest{
		Name: "Ana", Email: "ANA@example.com", Password: testPassword,
	})

	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
	assert.Empty(t, f.queue.tasks)
}

func TestResendOTP_Cooldown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), user.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = f.svc.ResendOTP(context.Background(), user.ResendOTPRequest{Email: "ana@example.com"})
	assert.ErrorIs(t, err, user.ErrResendTooSoon)

	f.clock = f.clock.Add(61 * time.Second)
	res, err := f.svc.ResendOTP(context.Background(), user.ResendOTPRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Add(10*time.Minute), res.OTPExpiry)
	assert.Len(t, f.queue.tasks, 2)
}

func TestVerifyOTP_CreatesUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), user.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	pending, _ := f.signups.Get(context.Background(), "ana@example.com")

	dto, err := f.svc.VerifyOTP(context.Background(), user.VerifyOTPRequest{OTP: pending.OTP, Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", dto.Email)
	assert.True(t, dto.IsActive)

	_, err = f.signups.Get(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, user.ErrSignupNotFound)

	created, err := f.repo.FindByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte(testPassword)))
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), user.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	pending, _ := f.signups.Get(context.Background(), "ana@example.com")

	f.clock = f.clock.Add(10 * time.Minute)
	_, err = f.svc.VerifyOTP(context.Background(), user.VerifyOTPRequest{OTP: pending.OTP, Email: "ana@example.com"})

	assert.ErrorIs(t, err, user.ErrOTPExpired)
}

func TestVerifyOTP_WrongCodeLocksAfterFiveAttempts(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signup(context.Background(), user.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	pending, _ := f.signups.Get(context.Background(), "ana@example.com")

	// Generated codes are never below 1000
	wrong := "0000"

	for i := 1; i < maxOTPAttempts; i++ {
		_, err = f.svc.VerifyOTP(context.Background(), user.VerifyOTPRequest{OTP: wrong, Email: "ana@example.com"})
		assert.ErrorIs(t, err, user.ErrOTPInvalid)
	}

	_, err = f.svc.VerifyOTP(context.Background(), user.VerifyOTPRequest{OTP: wrong, Email: "ana@example.com"})
	assert.ErrorIs(t, err, user.ErrTooManyAttempts)

	// Pending signup is gone; even the right code no longer works
	_, err = f.svc.VerifyOTP(context.Background(), user.VerifyOTPRequest{OTP: pending.OTP, Email: "ana@example.com"})
	assert.ErrorIs(t, err, user.ErrSignupNotFound)
}

// ========================================
// LOGIN
// ========================================

func TestLogin(t *testing.T) {
	f := newFixture(t)
	active := f.addUser(t, "ana@example.com", true)
	f.addUser(t, "blocked@example.com", false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown email", "nobody@example.com", testPassword, user.ErrUserNotFound},
		{"wrong password", "ana@example.com", "Wrong1234", user.ErrInvalidCredentials},
		{"blocked", "blocked@example.com", testPassword, user.ErrUserBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), user.LoginRequest{Email: tt.email, Password: tt.password})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("success", func(t *testing.T) {
		session, err := f.svc.Login(context.Background(), user.LoginRequest{Email: "ana@example.com", Password: testPassword})
		require.NoError(t, err)

		access, err := f.tokens.ValidateAccessToken(session.AccessToken)
		require.NoError(t, err)
		refresh, err := f.tokens.ValidateRefreshToken(session.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, active.ID.String(), access.UserID)
		assert.Equal(t, access.ID, refresh.ID)
		assert.Equal(t, active.ID, session.User.ID)
	})
}

func TestLogin_SignsAvatar(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)
	key := "write-space/profile/a.jpg"
	u.Image = &key

	f.store.On("SignedGetURL", mock.Anything, key, 7*24*time.Hour).Return("https://signed/a.jpg", nil).Once()

	session, err := f.svc.Login(context.Background(), user.LoginRequest{Email: "ana@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "https://signed/a.jpg", session.User.Image)
	f.store.AssertExpectations(t)
}

// ========================================
// REFRESH
// ========================================

func TestRefreshAccessToken(t *testing.T) {
	f := newFixture(t)
	active := f.addUser(t, "ana@example.com", true)
	blocked := f.addUser(t, "blocked@example.com", false)

	accessOnly, err := f.tokens.GenerateAccessToken(active.ID.String())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing", "", user.ErrRefreshTokenMissing},
		{"expired", signRefresh(t, active.ID.String(), time.Now().Add(-time.Minute)), user.ErrRefreshTokenExpired},
		{"garbage", "not-a-jwt", user.ErrRefreshTokenInvalid},
		{"access token presented", accessOnly, user.ErrRefreshTokenInvalid},
		{"unknown user", signRefresh(t, uuid.NewString(), time.Now().Add(time.Hour)), user.ErrRefreshTokenInvalid},
		{"blocked user", signRefresh(t, blocked.ID.String(), time.Now().Add(time.Hour)), user.ErrUserBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := f.svc.RefreshAccessToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, token)
		})
	}

	t.Run("success", func(t *testing.T) {
		pair, err := f.tokens.IssuePair(active.ID.String())
		require.NoError(t, err)

		token, err := f.svc.RefreshAccessToken(context.Background(), pair.RefreshToken)
		require.NoError(t, err)

		claims, err := f.tokens.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, active.ID.String(), claims.UserID)
		assert.Equal(t, jwtpkg.TypeAccess, claims.Type)
	})
}

// ========================================
// PASSWORD RESET
// ========================================

func TestForgotPassword_IssuesTokenAndSchedulesExpiry(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)

	require.NoError(t, f.svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "ana@example.com"}))

	stored, _ := f.repo.FindByID(context.Background(), u.ID)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.Len(t, *stored.ResetPasswordToken, 40)
	assert.Equal(t, f.clock.Add(30*time.Minute), *stored.ResetPasswordExpires)

	assert.Equal(t, []string{shared.TypeSendResetEmail, shared.TypeExpireResetToken}, f.queue.types())
	mail := f.queue.tasks[0].payload.(shared.ResetEmailPayload)
	assert.True(t, strings.HasSuffix(mail.ResetLink, "/forgot-password/"+*stored.ResetPasswordToken))
	assert.True(t, strings.HasPrefix(mail.ResetLink, "http://localhost:5173/"))
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "nobody@example.com"})

	assert.ErrorIs(t, err, user.ErrUserNotFound)
	assert.Empty(t, f.queue.tasks)
}

func TestValidateResetToken_ExpiredIsCleared(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "ana@example.com"}))
	stored, _ := f.repo.FindByID(context.Background(), u.ID)
	token := *stored.ResetPasswordToken

	require.NoError(t, f.svc.ValidateResetToken(context.Background(), token))

	f.clock = f.clock.Add(31 * time.Minute)
	assert.ErrorIs(t, f.svc.ValidateResetToken(context.Background(), token), user.ErrResetTokenInvalid)

	stored, _ = f.repo.FindByID(context.Background(), u.ID)
	assert.Nil(t, stored.ResetPasswordToken)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)
	require.NoError(t, f.svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "ana@example.com"}))
	stored, _ := f.repo.FindByID(context.Background(), u.ID)

	err := f.svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:    *stored.ResetPasswordToken,
		Password: "NewSecret456",
	})
	require.NoError(t, err)

	stored, _ = f.repo.FindByID(context.Background(), u.ID)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("NewSecret456")))
	assert.Contains(t, f.queue.types(), shared.TypeSendResetSuccess)
}

// ========================================
// PROFILE
// ========================================

func TestUpdateProfile_NoChanges(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)

	_, err := f.svc.UpdateProfile(context.Background(), u.ID, user.UpdateProfileRequest{})
	assert.ErrorIs(t, err, user.ErrNoChanges)

	same := "Ana"
	_, err = f.svc.UpdateProfile(context.Background(), u.ID, user.UpdateProfileRequest{Name: &same})
	assert.ErrorIs(t, err, user.ErrNoChanges)
}

func TestUpdateProfile_Name(t *testing.T) {
	f := newFixture(t)
	u := f.addUser(t, "ana@example.com", true)

	name := "Ana Maria"
	dto, err := f.svc.UpdateProfile(context.Background(), u.ID, user.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", dto.Name)

	stored, _ := f.repo.FindByID(context.Background(), u.ID)
	assert.Equal(t, "Ana Maria", stored.Name)
	f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
