package identity

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Size is the width of an account identity in bytes.
const Size = 20

// ID is a fixed-width network account reference, derived from an ed25519
// public key. It renders as a 0x-prefixed hex string.
type ID [Size]byte

var zeroID ID

// ErrInvalidID is returned when parsing a malformed identity string.
var ErrInvalidID = errors.New("invalid identity")

// AddressOf derives the account identity for a public key.
func AddressOf(pub ed25519.PublicKey) ID {
	digest := sha256.Sum256(pub)

	var id ID
	copy(id[:], digest[:Size])
	return id
}

// Parse decodes a 0x-prefixed hex identity string.
func Parse(s string) (ID, error) {
	var id ID

	if !strings.HasPrefix(s, "0x") {
		return id, fmt.Errorf("%w: missing 0x prefix: %q", ErrInvalidID, s)
	}

	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return id, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if len(raw) != Size {
		return id, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidID, Size, len(raw))
	}

	copy(id[:], raw)
	return id, nil
}

func (id ID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is the null account.
func (id ID) IsZero() bool {
	return id == zeroID
}

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Key is the context key for the authenticated request identity.
const Key ContextKey = "identity"

// Get retrieves the authenticated identity from a request context.
func Get(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(Key).(ID)
	return id, ok
}

// Set stores the authenticated identity in a request context.
func Set(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, Key, id)
}

// ClientIPKey is the context key for the remote address of a request.
const ClientIPKey ContextKey = "client-ip"

// ClientIP retrieves the remote address from a request context, or ""
// when none was recorded.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

// SetClientIP stores the remote address in a request context.
func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}
