package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/identity"
)

func newAuthenticator(t *testing.T) *TokenAuthenticator {
	t.Helper()
	t.Setenv("DOCVAULT_CONFIG_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	return NewTokenAuthenticator(cfg)
}

func runRequest(auth *TokenAuthenticator, authHeader string) (*httptest.ResponseRecorder, identity.ID, string) {
	var gotID identity.ID
	var gotIP string
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = identity.Get(r.Context())
		gotIP = identity.ClientIP(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/documents/1", nil)
	req.RemoteAddr = "192.0.2.10:34567"
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotID, gotIP
}

func TestValidToken(t *testing.T) {
	auth := newAuthenticator(t)
	key, err := identity.GenerateKey()
	require.NoError(t, err)

	token, err := IssueToken(key, time.Now())
	require.NoError(t, err)

	rec, id, ip := runRequest(auth, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, key.Address(), id)
	assert.Equal(t, "192.0.2.10", ip)
}

func TestMissingAndMalformedHeaders(t *testing.T) {
	auth := newAuthenticator(t)

	rec, _, _ := runRequest(auth, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, _ = runRequest(auth, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _, _ = runRequest(auth, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredToken(t *testing.T) {
	auth := newAuthenticator(t)
	key, err := identity.GenerateKey()
	require.NoError(t, err)

	token, err := IssueToken(key, time.Now().Add(-time.Duration(auth.cfg.AuthTokenTTL+1)*time.Second))
	require.NoError(t, err)

	rec, _, _ := runRequest(auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFutureToken(t *testing.T) {
	auth := newAuthenticator(t)
	key, err := identity.GenerateKey()
	require.NoError(t, err)

	token, err := IssueToken(key, time.Now().Add(time.Hour))
	require.NoError(t, err)

	rec, _, _ := runRequest(auth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubjectMustMatchSigningKey(t *testing.T) {
	auth := newAuthenticator(t)
	key, err := identity.GenerateKey()
	require.NoError(t, err)
	other, err := identity.GenerateKey()
	require.NoError(t, err)

	// Token signed by key but claiming to be other.
	forged := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		Subject:  other.Address().String(),
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	forged.Header[publicKeyHeader] = base64.RawURLEncoding.EncodeToString(key.Public())
	tokenStr, err := forged.SignedString(key.Private())
	require.NoError(t, err)

	rec, _, _ := runRequest(auth, "Bearer "+tokenStr)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForwardedForTrustedProxyOnly(t *testing.T) {
	auth := newAuthenticator(t)
	key, err := identity.GenerateKey()
	require.NoError(t, err)
	token, err := IssueToken(key, time.Now())
	require.NoError(t, err)

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(identity.ClientIP(r.Context())))
	}))

	req := httptest.NewRequest("GET", "/documents/1", nil)
	req.RemoteAddr = "192.0.2.10:34567"
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "192.0.2.10", rec.Body.String(), "untrusted proxy header should be ignored")

	auth.cfg.TrustedProxies = []string{"192.0.2.0/24"}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "203.0.113.9", rec.Body.String())
}
