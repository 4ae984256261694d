package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour

	// ExpiringSoonThreshold is the remaining lifetime under which a token is
	// reported as close to expiry.
	ExpiringSoonThreshold = 7 * 24 * time.Hour
)

var (
	ErrEmptySecret  = errors.New("jwt: signing secret is empty")
	ErrEmptySubject = errors.New("jwt: subject is empty")
	ErrWrongType    = errors.New("jwt: unexpected token type")
)

// Claims represents JWT claims structure
type Claims struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenPair is the credential set handed out on a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Manager handles JWT operations. Access and refresh tokens are signed with
// separate secrets so one can never be accepted in place of the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewManager creates new JWT manager. Zero TTLs fall back to 1h / 7d.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrEmptySecret
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssuePair mints an access and a refresh token sharing the same jti.
func (m *Manager) IssuePair(userID string) (*TokenPair, error) {
	sessionID := uuid.NewString()

	access, err := m.sign(userID, TypeAccess, sessionID)
	if err != nil {
		return nil, err
	}

	refresh, err := m.sign(userID, TypeRefresh, sessionID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccessToken generates a 1-hour access token
func (m *Manager) GenerateAccessToken(userID string) (string, error) {
	return m.sign(userID, TypeAccess, uuid.NewString())
}

func (m *Manager) sign(userID, tokenType, sessionID string) (string, error) {
	if userID == "" {
		return "", ErrEmptySubject
	}

	now := m.now()
	ttl, secret := m.accessTTL, m.accessSecret
	if tokenType == TypeRefresh {
		ttl, secret = m.refreshTTL, m.refreshSecret
	}

	claims := Claims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateAccessToken validates access token specifically
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, m.accessSecret, TypeAccess)
}

// ValidateRefreshToken validates refresh token specifically
func (m *Manager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return m.validate(tokenString, m.refreshSecret, TypeRefresh)
}

// validate returns errors that wrap jwt.ErrTokenExpired when the token is
// well-formed but past its expiry, so callers can tell the two cases apart.
func (m *Manager) validate(tokenString string, secret []byte, tokenType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrWrongType, tokenType, claims.Type)
	}

	return claims, nil
}

// IsExpiringSoon decodes the token without verifying it and reports whether
// less than ExpiringSoonThreshold of its lifetime remains. Undecodable tokens
// and tokens without an expiry count as expiring.
func (m *Manager) IsExpiringSoon(tokenString string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(m.now()) < ExpiringSoonThreshold
}
