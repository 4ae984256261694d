package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"writespace-backend/internal/config"
	"writespace-backend/internal/domains/user"
	"writespace-backend/internal/infrastructure/google"
	"writespace-backend/internal/infrastructure/queue"
	"writespace-backend/internal/infrastructure/storage"
	jwtpkg "writespace-backend/pkg/jwt"

	"github.com/rs/zerolog/log"
)

const (
	bcryptCost     = 12
	maxOTPAttempts = 5
)

// Dependencies gom mọi thứ userService cần, để container inject một lần
type Dependencies struct {
	Repo     user.Repository
	Signups  user.PendingSignupStore
	Tokens   *jwtpkg.Manager
	Storage  storage.ObjectStore
	Images   *storage.ImageProcessor
	Queue    queue.Enqueuer
	Google   google.IDTokenVerifier
	Signup   config.SignupConfig
	MinIO    config.MinIOConfig
	Frontend string
}

// userService implement user.Service interface
type userService struct {
	repo     user.Repository
	signups  user.PendingSignupStore
	tokens   *jwtpkg.Manager
	storage  storage.ObjectStore
	images   *storage.ImageProcessor
	queue    queue.Enqueuer
	google   google.IDTokenVerifier
	signup   config.SignupConfig
	minio    config.MinIOConfig
	frontend string
	now      func() time.Time
}

func NewUserService(deps Dependencies) user.Service {
	images := deps.Images
	if images == nil {
		images = storage.NewImageProcessor()
	}
	return &userService{
		repo:     deps.Repo,
		signups:  deps.Signups,
		tokens:   deps.Tokens,
		storage:  deps.Storage,
		images:   images,
		queue:    deps.Queue,
		google:   deps.Google,
		signup:   deps.Signup,
		minio:    deps.MinIO,
		frontend: deps.Frontend,
		now:      time.Now,
	}
}

// ========================================
// HELPERS
// ========================================

// toDTO adds a freshly signed avatar URL. A signing failure leaves Image
// empty instead of failing the request.
func (s *userService) toDTO(ctx context.Context, u *user.User) user.UserDTO {
	dto := u.ToDTO()
	if u.Image == nil || *u.Image == "" {
		return dto
	}
	url, err := s.storage.SignedGetURL(ctx, *u.Image, s.minio.SignedURLTTL)
	if err != nil {
		log.Warn().Err(err).Str("key", *u.Image).Msg("Failed to sign avatar URL")
		return dto
	}
	dto.Image = url
	return dto
}

func (s *userService) newSession(ctx context.Context, u *user.User) (*user.Session, error) {
	pair, err := s.tokens.IssuePair(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &user.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         s.toDTO(ctx, u),
	}, nil
}

// generateOTP returns a 4-digit code in [1000, 9999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// generateSecureToken tạo random hex string (2*n chars)
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func humanizeDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
