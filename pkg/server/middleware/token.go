package middleware

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/identity"
)

// publicKeyHeader is the JOSE header carrying the signer's raw ed25519
// public key, base64url-encoded. Tokens are self-certifying: the key is
// trusted only to speak for its own derived address, which the sub claim
// must match.
const publicKeyHeader = "pub"

// clockSkew is how far in the future an iat claim may sit before the
// token is rejected.
const clockSkew = 30 * time.Second

// TokenAuthenticator is middleware that validates bearer tokens
type TokenAuthenticator struct {
	cfg *config.Config
	now func() time.Time
}

// NewTokenAuthenticator creates a new bearer token authenticator middleware
func NewTokenAuthenticator(cfg *config.Config) *TokenAuthenticator {
	return &TokenAuthenticator{cfg: cfg, now: time.Now}
}

// IssueToken signs a bearer token for the key's derived address. The
// token carries the public key in its header and is accepted until the
// configured TTL after issuance.
func IssueToken(key *identity.SignerKey, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		Subject:  key.Address().String(),
		IssuedAt: jwt.NewNumericDate(issuedAt),
	})
	token.Header[publicKeyHeader] = base64.RawURLEncoding.EncodeToString(key.Public())

	return token.SignedString(key.Private())
}

// Middleware returns an HTTP middleware that validates bearer tokens
func (a *TokenAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authorization missing"))
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Malformed authorization header"))
			return
		}

		id, err := a.verify(tokenStr)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(err.Error()))
			return
		}

		ctx := identity.Set(r.Context(), id)
		ctx = identity.SetClientIP(ctx, a.clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *TokenAuthenticator) verify(tokenStr string) (identity.ID, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"EdDSA"}))

	var pub ed25519.PublicKey
	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		encoded, ok := t.Header[publicKeyHeader].(string)
		if !ok {
			return nil, fmt.Errorf("missing %s header", publicKeyHeader)
		}
		raw, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("malformed %s header", publicKeyHeader)
		}
		pub = ed25519.PublicKey(raw)
		return pub, nil
	})
	if err != nil {
		return identity.ID{}, fmt.Errorf("Malformed authorization token")
	}

	if claims.IssuedAt == nil {
		return identity.ID{}, fmt.Errorf("Token missing issued-at")
	}
	age := a.now().Sub(claims.IssuedAt.Time)
	if age > a.cfg.TokenTTL() || age < -clockSkew {
		return identity.ID{}, fmt.Errorf("Token expired")
	}

	id, err := identity.Parse(claims.Subject)
	if err != nil {
		return identity.ID{}, fmt.Errorf("Malformed token subject")
	}

	// The embedded key speaks only for its own derived address.
	if id != identity.AddressOf(pub) {
		return identity.ID{}, fmt.Errorf("Token subject does not match signing key")
	}
	return id, nil
}

func (a *TokenAuthenticator) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" && a.cfg.IsTrustedProxy(host) {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return host
}
