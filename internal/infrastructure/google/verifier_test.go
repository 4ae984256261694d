package google

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"writespace-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenInfoServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "credential", r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestVerify_Valid(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := tokenInfoServer(t, fmt.Sprintf(`{"aud":"client-1","iss":"https://accounts.google.com","sub":"g-123",
		"email":"Ana@Example.com","email_verified":"true","name":"Ana","exp":"%d"}`, exp), http.StatusOK)
	defer srv.Close()

	v := NewTokenInfoVerifier(config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	id, err := v.Verify(context.Background(), "credential")

	require.NoError(t, err)
	assert.Equal(t, "g-123", id.Subject)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.True(t, id.EmailVerified)
}

func TestVerify_WrongAudience(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := tokenInfoServer(t, fmt.Sprintf(`{"aud":"someone-else","iss":"accounts.google.com","sub":"g","email":"a@b.c","exp":"%d"}`, exp), http.StatusOK)
	defer srv.Close()

	v := NewTokenInfoVerifier(config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	_, err := v.Verify(context.Background(), "credential")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestVerify_Rejected(t *testing.T) {
	srv := tokenInfoServer(t, `{"error":"invalid_token"}`, http.StatusBadRequest)
	defer srv.Close()

	v := NewTokenInfoVerifier(config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	_, err := v.Verify(context.Background(), "credential")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}
