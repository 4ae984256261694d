package middleware

import (
	"errors"
	"net/http"
	"strings"

	"writespace-backend/internal/shared/response"
	jwtpkg "writespace-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	RefreshCookieName = "refreshToken"
	ContextKeyUserID  = "user_id"

	MsgAuthRequired   = "Authentication required"
	MsgTokenInvalid   = "Token is not valid"
	MsgPayloadInvalid = "Token payload is invalid"
)

// AccessTokenVerifier is the subset of the jwt manager the authenticator needs.
type AccessTokenVerifier interface {
	ValidateAccessToken(token string) (*jwtpkg.Claims, error)
}

// Authenticate admits a request only when it carries a valid bearer access
// token and a refresh cookie. Rejections abort the chain:
//
//	no bearer token      -> 401, expired=true
//	no refresh cookie    -> 403
//	token not verifiable -> 401, expired when the token is past exp
//	no subject in token  -> 403
func Authenticate(verifier AccessTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Bearer token
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.AbortAuth(c, http.StatusUnauthorized, MsgAuthRequired, true)
			return
		}

		// 2. Refresh cookie must be present (not verified here)
		if refresh, err := c.Cookie(RefreshCookieName); err != nil || refresh == "" {
			response.AbortAuth(c, http.StatusForbidden, MsgAuthRequired, false)
			return
		}

		// 3. Verify
		claims, err := verifier.ValidateAccessToken(token)
		if err != nil {
			expired := errors.Is(err, jwt.ErrTokenExpired)
			log.Debug().
				Str("request_id", c.GetString(ContextKeyRequestID)).
				Err(err).
				Bool("expired", expired).
				Msg("Access token rejected")
			response.AbortAuth(c, http.StatusUnauthorized, MsgTokenInvalid, expired)
			return
		}

		// 4. Subject
		userID, err := uuid.Parse(claims.UserID)
		if claims.UserID == "" || err != nil {
			response.AbortAuth(c, http.StatusForbidden, MsgPayloadInvalid, false)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID returns the identity the authenticator attached to the request.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
