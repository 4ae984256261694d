package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"writespace-backend/internal/config"
)

var (
	ErrInvalidIDToken = errors.New("google: invalid id token")
	ErrNotConfigured  = errors.New("google: client id is not configured")
)

// Identity is what a verified Google ID token tells us about the user.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IDTokenVerifier checks a Google Sign-In credential.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// TokenInfoVerifier validates ID tokens against Google's tokeninfo endpoint
// and checks the audience against our client id.
type TokenInfoVerifier struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

func NewTokenInfoVerifier(cfg config.GoogleConfig) *TokenInfoVerifier {
	return &TokenInfoVerifier{
		clientID: cfg.ClientID,
		endpoint: cfg.TokenInfoURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// tokeninfo returns every claim as a string.
type tokenInfo struct {
	Aud           string `json:"aud"`
	Iss           string `json:"iss"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

func (v *TokenInfoVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidIDToken
	}

	endpoint := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrInvalidIDToken, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	if info.Aud != v.clientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}
	if info.Iss != "accounts.google.com" && info.Iss != "https://accounts.google.com" {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, info.Iss)
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || v.now().Unix() >= exp {
		return nil, fmt.Errorf("%w: expired", ErrInvalidIDToken)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrInvalidIDToken)
	}

	return &Identity{
		Subject:       info.Sub,
		Email:         strings.ToLower(info.Email),
		EmailVerified: info.EmailVerified == "true",
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
